package transcription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/jobcontext"
)

type fakePresigner struct {
	stubStore
	err error
}

// stubStore stubs the ObjectStore methods the service never calls
type stubStore struct{}

func (stubStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	return nil
}
func (stubStore) Get(ctx context.Context, bucket, key string) ([]byte, error) { return nil, nil }
func (stubStore) List(ctx context.Context, bucket, prefix string) ([]entities.ObjectInfo, error) {
	return nil, nil
}
func (stubStore) Delete(ctx context.Context, bucket, key string) error { return nil }

func (f *fakePresigner) Presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://" + bucket + ".s3.amazonaws.com/" + key + "?sig=1", nil
}

type fakeTranscriber struct {
	gotURL   string
	gotJobID bool
	items    []entities.TranscriptItem
	err      error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioURL string) ([]entities.TranscriptItem, error) {
	f.gotURL = audioURL
	_, f.gotJobID = jobcontext.GetJobID(ctx)
	return f.items, f.err
}

func TestService_TranscribeRecording(t *testing.T) {
	transcriber := &fakeTranscriber{items: []entities.TranscriptItem{
		word("spk1", "hi"), word("spk1", "there"), word("spk2", "hello"),
	}}
	svc := NewService(&fakePresigner{}, transcriber, Config{Bucket: "calls", PresignExpiry: time.Hour, JobTimeout: time.Minute}, nil)

	turns, err := svc.TranscribeRecording(context.Background(), "recordings/a.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transcriber.gotURL != "https://calls.s3.amazonaws.com/recordings/a.wav?sig=1" {
		t.Errorf("unexpected audio url %s", transcriber.gotURL)
	}
	if !transcriber.gotJobID {
		t.Error("expected job metadata in context")
	}
	if len(turns) != 2 || turns[0].Speaker != entities.SpeakerAgent || turns[1].Text != "hello" {
		t.Errorf("unexpected turns %+v", turns)
	}
}

func TestService_PresignFailure(t *testing.T) {
	transcriber := &fakeTranscriber{}
	svc := NewService(&fakePresigner{err: entities.ErrObjectNotFound}, transcriber, Config{Bucket: "calls"}, nil)

	_, err := svc.TranscribeRecording(context.Background(), "recordings/missing.wav")
	if !errors.Is(err, entities.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if transcriber.gotURL != "" {
		t.Error("transcriber must not be called when presign fails")
	}
}

func TestService_TranscriberFailure(t *testing.T) {
	transcriber := &fakeTranscriber{err: entities.ErrTranscriptionFailed}
	svc := NewService(&fakePresigner{}, transcriber, Config{Bucket: "calls"}, nil)

	if _, err := svc.TranscribeRecording(context.Background(), "recordings/a.wav"); !errors.Is(err, entities.ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
}
