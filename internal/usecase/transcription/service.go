// Package transcription runs offline transcription of stored recordings and
// splits the result into speaker turns.
package transcription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	"github.com/johnquangdev/call-insights/pkg/jobcontext"
)

const jobType = "batch_transcription"

// Config holds batch transcription settings
type Config struct {
	Bucket        string
	PresignExpiry time.Duration
	JobTimeout    time.Duration
}

// Service transcribes recordings into speaker turns
type Service struct {
	store       repositories.ObjectStore
	transcriber repositories.BatchTranscriber
	cfg         Config
	logger      *zap.Logger
}

// NewService creates a transcription service
func NewService(store repositories.ObjectStore, transcriber repositories.BatchTranscriber, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		transcriber: transcriber,
		cfg:         cfg,
		logger:      logger,
	}
}

// TranscribeRecording transcribes the recording stored under audioKey and
// returns its speaker turns
func (s *Service) TranscribeRecording(ctx context.Context, audioKey string) ([]entities.SpeakerTurn, error) {
	ctx, cancel := jobcontext.JobBegin(ctx, uuid.New(), jobType, s.cfg.JobTimeout)
	defer cancel()

	// The provider fetches the audio itself through a time-limited link
	audioURL, err := s.store.Presign(ctx, s.cfg.Bucket, audioKey, s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign recording %s: %w", audioKey, err)
	}

	if s.logger != nil {
		s.logger.Info("🎙️ Starting batch transcription",
			append(jobcontext.LogFields(ctx), zap.String("audio_key", audioKey))...,
		)
	}

	items, err := s.transcriber.Transcribe(ctx, audioURL)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Batch transcription failed",
				append(jobcontext.LogFields(ctx), zap.String("audio_key", audioKey), zap.Error(err))...,
			)
		}
		return nil, err
	}

	turns := SegmentSpeakers(items)

	if s.logger != nil {
		s.logger.Info("✅ Batch transcription completed",
			append(jobcontext.LogFields(ctx),
				zap.String("audio_key", audioKey),
				zap.Int("items", len(items)),
				zap.Int("turns", len(turns)),
			)...,
		)
	}
	return turns, nil
}
