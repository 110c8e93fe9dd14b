// Package knowledge manages the knowledge-base documents and uploaded
// recordings in the object store.
package knowledge

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
)

// ContextInvalidator drops any cached knowledge context after a change
type ContextInvalidator interface {
	InvalidateContext()
}

// Config holds object namespace settings
type Config struct {
	Bucket           string
	KnowledgePrefix  string
	RecordingsPrefix string
	PresignExpiry    time.Duration
}

// UploadResult is returned for every stored file
type UploadResult struct {
	Key string
	URL string
}

// Service implements knowledge-base and recording storage
type Service struct {
	store       repositories.ObjectStore
	invalidator ContextInvalidator
	cfg         Config
	logger      *zap.Logger
	newID       func() string
}

// NewService creates a knowledge service. invalidator may be nil.
func NewService(store repositories.ObjectStore, invalidator ContextInvalidator, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = time.Hour
	}
	return &Service{
		store:       store,
		invalidator: invalidator,
		cfg:         cfg,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// Upload stores a knowledge document under a fresh key that keeps the
// original extension, and returns a presigned link to it
func (s *Service) Upload(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	key := s.cfg.KnowledgePrefix + s.newID() + path.Ext(filename)

	if err := s.store.Put(ctx, s.cfg.Bucket, key, data, contentType); err != nil {
		return nil, err
	}
	s.invalidate()

	url, err := s.store.Presign(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("📄 Knowledge document uploaded",
		zap.String("key", key),
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)
	return &UploadResult{Key: key, URL: url}, nil
}

// UploadAudio stores a call recording for later batch transcription
func (s *Service) UploadAudio(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	key := s.cfg.RecordingsPrefix + s.newID() + path.Ext(filename)

	if err := s.store.Put(ctx, s.cfg.Bucket, key, data, contentType); err != nil {
		return nil, err
	}

	s.logger.Info("🎧 Recording uploaded",
		zap.String("key", key),
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)
	return &UploadResult{Key: key}, nil
}

// List returns every knowledge document with a presigned link
func (s *Service) List(ctx context.Context) ([]entities.KnowledgeDocument, error) {
	objects, err := s.store.List(ctx, s.cfg.Bucket, s.cfg.KnowledgePrefix)
	if err != nil {
		return nil, err
	}

	documents := make([]entities.KnowledgeDocument, 0, len(objects))
	for _, obj := range objects {
		// Folder marker
		if obj.Key == s.cfg.KnowledgePrefix {
			continue
		}

		url, err := s.store.Presign(ctx, s.cfg.Bucket, obj.Key, s.cfg.PresignExpiry)
		if err != nil {
			return nil, err
		}

		documents = append(documents, entities.KnowledgeDocument{
			ID:           obj.Name(),
			Name:         obj.Name(),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          url,
		})
	}
	return documents, nil
}

// Analysis returns document count and total size alongside the listing
func (s *Service) Analysis(ctx context.Context) (*entities.KnowledgeAnalysis, error) {
	documents, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	analysis := &entities.KnowledgeAnalysis{Files: documents}
	for _, doc := range documents {
		analysis.TotalFiles++
		analysis.TotalSize += doc.Size
	}
	return analysis, nil
}

// Delete removes the knowledge document with the given id. Missing
// documents return entities.ErrObjectNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" || strings.Contains(id, "/") || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", entities.ErrInvalidObjectKey, id)
	}

	key := s.cfg.KnowledgePrefix + id
	if err := s.store.Delete(ctx, s.cfg.Bucket, key); err != nil {
		return err
	}
	s.invalidate()

	s.logger.Info("🗑️ Knowledge document deleted", zap.String("key", key))
	return nil
}

func (s *Service) invalidate() {
	if s.invalidator != nil {
		s.invalidator.InvalidateContext()
	}
}
