package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	"github.com/johnquangdev/call-insights/internal/infrastructure/cache"
)

const testPrefix = "knowledge-base/"

type memoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	order   []string
	lists   int
	getErr  error
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: make(map[string][]byte)}
}

func (m *memoryObjectStore) add(key string, data []byte) {
	m.objects[key] = data
	m.order = append(m.order, key)
}

func (m *memoryObjectStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	m.add(key, data)
	return nil
}

func (m *memoryObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, entities.ErrObjectNotFound
	}
	return data, nil
}

func (m *memoryObjectStore) List(ctx context.Context, bucket, prefix string) ([]entities.ObjectInfo, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()

	var out []entities.ObjectInfo
	for _, key := range m.order {
		if strings.HasPrefix(key, prefix) {
			out = append(out, entities.ObjectInfo{Key: key, Size: int64(len(m.objects[key]))})
		}
	}
	return out, nil
}

func (m *memoryObjectStore) Delete(ctx context.Context, bucket, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryObjectStore) Presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

type fakeModel struct {
	calls      int
	prompt     string
	params     repositories.GenerationParams
	candidates []repositories.Candidate
	err        error
}

func (f *fakeModel) Invoke(ctx context.Context, prompt string, params repositories.GenerationParams) ([]repositories.Candidate, error) {
	f.calls++
	f.prompt = prompt
	f.params = params
	return f.candidates, f.err
}

func newTestService(store repositories.ObjectStore, model repositories.GenerationModel, c ContextCache) *Service {
	return NewService(store, model, c, Config{
		Bucket:          "bucket",
		KnowledgePrefix: testPrefix,
		Params:          DefaultParams,
		ContextCacheTTL: time.Minute,
	}, nil, nil)
}

func TestGenerateAssistance_EmptyKnowledgeBase(t *testing.T) {
	store := newMemoryObjectStore()
	store.add(testPrefix, nil)
	model := &fakeModel{candidates: []repositories.Candidate{{OutputText: "unused"}}}

	answer := newTestService(store, model, nil).GenerateAssistance(context.Background(), "what is the refund policy?")

	if answer != NoDocumentsMessage {
		t.Errorf("expected no-documents message, got %q", answer)
	}
	if model.calls != 0 {
		t.Errorf("model must not be invoked, got %d calls", model.calls)
	}
}

func TestGenerateAssistance_BuildsPromptFromDocuments(t *testing.T) {
	store := newMemoryObjectStore()
	store.add(testPrefix, nil)
	store.add(testPrefix+"a.txt", []byte("Refunds take 5 days."))
	store.add(testPrefix+"blank.txt", []byte("   \n"))
	store.add(testPrefix+"b.md", []byte("Support is open 9 to 5."))
	model := &fakeModel{candidates: []repositories.Candidate{{OutputText: "Five days."}, {OutputText: "ignored"}}}

	answer := newTestService(store, model, nil).GenerateAssistance(context.Background(), "How long do refunds take?")

	if answer != "Five days." {
		t.Errorf("expected first candidate, got %q", answer)
	}
	want := BuildPrompt("Refunds take 5 days.\n\nSupport is open 9 to 5.", "How long do refunds take?")
	if model.prompt != want {
		t.Errorf("unexpected prompt:\n%s\nwant:\n%s", model.prompt, want)
	}
	if model.params.MaxTokens != 512 || model.params.Temperature != 0.7 || model.params.TopP != 0.9 || len(model.params.StopSequences) != 0 {
		t.Errorf("unexpected params %+v", model.params)
	}
}

func TestGenerateAssistance_DecodesAndSkips(t *testing.T) {
	store := newMemoryObjectStore()
	store.add(testPrefix+"manual.PDF", []byte("%PDF-fake"))
	store.add(testPrefix+"broken.pdf", []byte("%PDF-broken"))
	store.add(testPrefix+"binary.bin", []byte{0xff, 0xfe, 0x00})
	store.add(testPrefix+"notes.txt", []byte("Plain notes."))
	model := &fakeModel{candidates: []repositories.Candidate{{OutputText: "ok"}}}

	svc := newTestService(store, model, nil)
	svc.extractPDF = func(data []byte) (string, error) {
		if string(data) == "%PDF-broken" {
			return "", errors.New("bad xref")
		}
		return "page one\npage two", nil
	}

	svc.GenerateAssistance(context.Background(), "q")

	if !strings.Contains(model.prompt, "page one\npage two\n\nPlain notes.") {
		t.Errorf("unexpected context in prompt:\n%s", model.prompt)
	}
	if strings.Contains(model.prompt, "\xff") {
		t.Error("binary document must be skipped")
	}
}

func TestGenerateAssistance_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		want  string
	}{
		{"no candidates", &fakeModel{}, NoAnswerMessage},
		{
			"aws error",
			&fakeModel{err: &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"}},
			"An AWS error occurred: Rate exceeded",
		},
		{"other error", &fakeModel{err: errors.New("boom")}, UnexpectedErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryObjectStore()
			store.add(testPrefix+"a.txt", []byte("context"))

			if got := newTestService(store, tt.model, nil).GenerateAssistance(context.Background(), "q"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGenerateAssistance_FetchFailure(t *testing.T) {
	store := newMemoryObjectStore()
	store.add(testPrefix+"a.txt", []byte("context"))
	store.getErr = errors.New("connection reset")
	model := &fakeModel{}

	if got := newTestService(store, model, nil).GenerateAssistance(context.Background(), "q"); got != UnexpectedErrorMessage {
		t.Errorf("expected unexpected-error message, got %q", got)
	}
	if model.calls != 0 {
		t.Error("model must not be invoked without context")
	}
}

func TestGenerateAssistance_ContextCache(t *testing.T) {
	store := newMemoryObjectStore()
	store.add(testPrefix+"a.txt", []byte("first"))
	model := &fakeModel{candidates: []repositories.Candidate{{OutputText: "ok"}}}
	c := cache.NewMemoryStore(0)
	defer c.Close()

	svc := newTestService(store, model, c)
	svc.GenerateAssistance(context.Background(), "q1")
	svc.GenerateAssistance(context.Background(), "q2")
	if store.lists != 1 {
		t.Errorf("expected cached context, listed %d times", store.lists)
	}

	store.add(testPrefix+"b.txt", []byte("second"))
	svc.InvalidateContext()
	svc.GenerateAssistance(context.Background(), "q3")
	if store.lists != 2 {
		t.Errorf("expected relist after invalidation, listed %d times", store.lists)
	}
	if !strings.Contains(model.prompt, "first\n\nsecond") {
		t.Errorf("expected refreshed context, got:\n%s", model.prompt)
	}
}

func TestGenerateAssistance_NoTTLRelistsEveryCall(t *testing.T) {
	store := newMemoryObjectStore()
	store.add(testPrefix+"a.txt", []byte("first"))
	model := &fakeModel{candidates: []repositories.Candidate{{OutputText: "ok"}}}
	c := cache.NewMemoryStore(0)
	defer c.Close()

	svc := NewService(store, model, c, Config{
		Bucket:          "bucket",
		KnowledgePrefix: testPrefix,
		Params:          DefaultParams,
	}, nil, nil)
	svc.GenerateAssistance(context.Background(), "q1")

	// Written straight to the bucket, bypassing upload invalidation
	store.add(testPrefix+"b.txt", []byte("second"))
	svc.GenerateAssistance(context.Background(), "q2")

	if store.lists != 2 {
		t.Errorf("expected a listing per call, listed %d times", store.lists)
	}
	if !strings.Contains(model.prompt, "first\n\nsecond") {
		t.Errorf("expected the new document in context, got:\n%s", model.prompt)
	}
}
