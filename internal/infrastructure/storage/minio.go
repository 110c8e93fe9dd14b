package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/config"
)

// MinIOClient implements repositories.ObjectStore over any S3-compatible API
type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string // Public URL for generating accessible URLs (e.g., https://cdn.example.com)
}

// NewMinIOClient creates a new S3 client for the configured endpoint
func NewMinIOClient(storageCfg *config.StorageConfig, awsCfg *config.AWSConfig) (*MinIOClient, error) {
	var creds *credentials.Credentials
	if awsCfg.AccessKeyID != "" {
		creds = credentials.NewStaticV4(awsCfg.AccessKeyID, awsCfg.SecretAccessKey, awsCfg.SessionToken)
	} else {
		// Fall back to the environment and instance role
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.IAM{},
		})
	}

	minioClient, err := minio.New(storageCfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: storageCfg.UseSSL,
		Region: awsCfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &MinIOClient{
		client:    minioClient,
		bucket:    storageCfg.BucketName,
		publicURL: storageCfg.PublicURL,
	}, nil
}

// CheckBucket verifies the default bucket exists and is reachable
func (m *MinIOClient) CheckBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", mapError(err))
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", m.bucket)
	}
	return nil
}

// Bucket returns the default bucket name
func (m *MinIOClient) Bucket() string {
	return m.bucket
}

// Put uploads data under key
func (m *MinIOClient) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, mapError(err))
	}
	return nil
}

// Get downloads the whole object
func (m *MinIOClient) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, mapError(err))
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, mapError(err))
	}
	return data, nil
}

// List lists all objects under prefix
func (m *MinIOClient) List(ctx context.Context, bucket, prefix string) ([]entities.ObjectInfo, error) {
	var objects []entities.ObjectInfo

	objectCh := m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", mapError(object.Err))
		}
		objects = append(objects, entities.ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}

	return objects, nil
}

// Delete removes key. S3 deletes are idempotent, so existence is checked first.
func (m *MinIOClient) Delete(ctx context.Context, bucket, key string) error {
	if _, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return fmt.Errorf("failed to stat %s: %w", key, mapError(err))
	}
	if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, mapError(err))
	}
	return nil
}

// Presign gets a presigned URL for downloading key
func (m *MinIOClient) Presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", mapError(err))
	}
	return rewritePublicURL(u, m.publicURL), nil
}

// rewritePublicURL swaps the internal endpoint for the public one, keeping
// path and signed query intact. Used when the store sits behind a proxy.
func rewritePublicURL(u *url.URL, publicURL string) string {
	if publicURL == "" {
		return u.String()
	}
	pathAndQuery := u.EscapedPath()
	if u.RawQuery != "" {
		pathAndQuery += "?" + u.RawQuery
	}
	return publicURL + pathAndQuery
}

// mapError translates S3 error codes into domain errors
func mapError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %v", entities.ErrObjectNotFound, err)
	case "AccessDenied":
		return fmt.Errorf("%w: %v", entities.ErrStorageAccessDenied, err)
	}
	return err
}
