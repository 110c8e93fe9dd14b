package repositories

import (
	"context"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// BatchTranscriber runs an offline transcription job with speaker labels
// and returns the recognized items in order
type BatchTranscriber interface {
	Transcribe(ctx context.Context, audioURL string) ([]entities.TranscriptItem, error)
}
