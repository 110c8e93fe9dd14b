// Package assemblyai runs offline speaker-labelled transcription jobs.
package assemblyai

import (
	"context"
	"errors"
	"fmt"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/config"
	"github.com/johnquangdev/call-insights/pkg/jobcontext"
)

const defaultPollInterval = 3 * time.Second

// Transcriber implements repositories.BatchTranscriber
type Transcriber struct {
	client       *aai.Client
	languageCode string
	pollInterval time.Duration
	submitPolicy func() backoff.BackOff
	logger       *zap.Logger
}

// NewTranscriber creates a batch transcriber using the official SDK client
func NewTranscriber(cfg *config.AssemblyAIConfig, logger *zap.Logger) *Transcriber {
	return newTranscriber(aai.NewClient(cfg.APIKey), cfg.LanguageCode, logger)
}

func newTranscriber(client *aai.Client, languageCode string, logger *zap.Logger) *Transcriber {
	return &Transcriber{
		client:       client,
		languageCode: languageCode,
		pollInterval: defaultPollInterval,
		submitPolicy: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 2 * time.Second
			bo.MaxElapsedTime = 30 * time.Second
			bo.MaxInterval = 10 * time.Second
			return bo
		},
		logger: logger,
	}
}

// Transcribe submits audioURL with speaker labels, waits for the job to
// finish and returns its words in order
func (t *Transcriber) Transcribe(ctx context.Context, audioURL string) ([]entities.TranscriptItem, error) {
	if audioURL == "" {
		return nil, entities.ErrEmptyAudioURL
	}

	transcriptID, err := t.submit(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	transcript, err := t.wait(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	return wordsToItems(transcript.Words), nil
}

// submit retries transient submission failures with exponential backoff
func (t *Transcriber) submit(ctx context.Context, audioURL string) (string, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(t.languageCode),
		SpeakerLabels: aai.Bool(true),
	}

	var (
		transcriptID string
		attempt      int
	)
	submitFn := func() error {
		attempt++
		transcript, err := t.client.Transcripts.SubmitFromURL(ctx, audioURL, params)
		if err != nil {
			if t.logger != nil {
				t.logger.Warn("⚠️ Transcription submit failed",
					append(jobcontext.LogFields(ctx), zap.Int("attempt", attempt), zap.Error(err))...,
				)
			}
			if !jobcontext.IsRetryableError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if transcript.ID == nil {
			return backoff.Permanent(errors.New("transcription service returned no transcript id"))
		}
		transcriptID = *transcript.ID
		return nil
	}

	if err := backoff.Retry(submitFn, backoff.WithContext(t.submitPolicy(), ctx)); err != nil {
		return "", fmt.Errorf("%w: submit: %v", entities.ErrTranscriptionFailed, err)
	}

	if t.logger != nil {
		t.logger.Info("✅ Transcription job submitted",
			append(jobcontext.LogFields(ctx), zap.String("transcript_id", transcriptID))...,
		)
	}
	return transcriptID, nil
}

// wait polls the job until it completes, fails or ctx ends
func (t *Transcriber) wait(ctx context.Context, transcriptID string) (aai.Transcript, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		transcript, err := t.client.Transcripts.Get(ctx, transcriptID)
		if err != nil {
			return aai.Transcript{}, fmt.Errorf("%w: poll %s: %v", entities.ErrTranscriptionFailed, transcriptID, err)
		}

		switch transcript.Status {
		case aai.TranscriptStatusCompleted:
			return transcript, nil
		case aai.TranscriptStatusError:
			msg := "unknown error"
			if transcript.Error != nil {
				msg = *transcript.Error
			}
			return aai.Transcript{}, fmt.Errorf("%w: %s", entities.ErrTranscriptionFailed, msg)
		}

		select {
		case <-ctx.Done():
			return aai.Transcript{}, fmt.Errorf("%w: %v", entities.ErrTranscriptionFailed, ctx.Err())
		case <-ticker.C:
		}
	}
}

// wordsToItems maps SDK words to transcript items. The service attaches
// punctuation to words, so every item is a word.
func wordsToItems(words []aai.TranscriptWord) []entities.TranscriptItem {
	items := make([]entities.TranscriptItem, 0, len(words))
	for _, w := range words {
		if w.Text == nil {
			continue
		}
		item := entities.TranscriptItem{
			Type:    entities.ItemTypeWord,
			Content: *w.Text,
		}
		if w.Speaker != nil {
			item.Speaker = *w.Speaker
		}
		items = append(items, item)
	}
	return items
}
