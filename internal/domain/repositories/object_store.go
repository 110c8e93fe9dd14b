package repositories

import (
	"context"
	"time"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// ObjectStore defines bucket-and-key object storage access
type ObjectStore interface {
	// Put stores data under key
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error

	// Get returns the full object body, or entities.ErrObjectNotFound
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// List returns every object under prefix
	List(ctx context.Context, bucket, prefix string) ([]entities.ObjectInfo, error)

	// Delete removes key, or returns entities.ErrObjectNotFound
	Delete(ctx context.Context, bucket, key string) error

	// Presign returns a time-limited direct download URL
	Presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
