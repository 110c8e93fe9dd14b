package repositories

import (
	"context"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// StreamingTranscriber opens authenticated real-time transcription sessions
type StreamingTranscriber interface {
	Open(ctx context.Context) (TranscriptionStream, error)
}

// TranscriptionStream is one open real-time transcription session.
// SendAudio and Recv may be called concurrently from different goroutines;
// Close must be safe to call more than once.
type TranscriptionStream interface {
	// SendAudio forwards one raw audio chunk
	SendAudio(ctx context.Context, chunk []byte) error

	// Recv blocks for the next message and returns the transcript events it
	// carries, which may be none
	Recv(ctx context.Context) ([]entities.TranscriptEvent, error)

	Close() error
}
