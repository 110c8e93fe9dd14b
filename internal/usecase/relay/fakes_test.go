package relay

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
)

type fakeClient struct {
	audio chan []byte

	mu       sync.Mutex
	messages []any
	closes   int
}

func newFakeClient() *fakeClient {
	return &fakeClient{audio: make(chan []byte)}
}

func (c *fakeClient) ReadAudio(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case chunk, ok := <-c.audio:
		if !ok {
			return nil, io.EOF
		}
		return chunk, nil
	}
}

func (c *fakeClient) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, v)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeClient) snapshot() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *fakeClient) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

type recvResult struct {
	events []entities.TranscriptEvent
	err    error
}

type fakeStream struct {
	results chan recvResult

	mu     sync.Mutex
	sent   [][]byte
	closes int
}

func newFakeStream() *fakeStream {
	return &fakeStream{results: make(chan recvResult)}
}

func (s *fakeStream) SendAudio(ctx context.Context, chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, chunk)
	return nil
}

func (s *fakeStream) Recv(ctx context.Context) ([]entities.TranscriptEvent, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res, ok := <-s.results:
		if !ok {
			return nil, io.EOF
		}
		return res.events, res.err
	}
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeStream) emit(events ...entities.TranscriptEvent) {
	s.results <- recvResult{events: events}
}

type fakeTranscriber struct {
	stream *fakeStream
	err    error
}

func (t *fakeTranscriber) Open(ctx context.Context) (repositories.TranscriptionStream, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.stream, nil
}

type fakeAssistant struct {
	release chan struct{}

	mu      sync.Mutex
	queries []string
}

func (a *fakeAssistant) GenerateAssistance(ctx context.Context, query string) string {
	a.mu.Lock()
	a.queries = append(a.queries, query)
	a.mu.Unlock()

	if a.release != nil {
		<-a.release
	}
	return "answer: " + query
}

func (a *fakeAssistant) calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.queries))
	copy(out, a.queries)
	return out
}

type fakeConversations struct {
	err error

	mu      sync.Mutex
	records []*entities.ConversationRecord
}

func (c *fakeConversations) Put(ctx context.Context, sessionID string, record *entities.ConversationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	return c.err
}

func (c *fakeConversations) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

type fakePublisher struct {
	mu        sync.Mutex
	sequences []int
}

func (p *fakePublisher) PublishSegment(ctx context.Context, sessionID string, sequence int, segment entities.TranscriptSegment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sequences = append(p.sequences, sequence)
	return nil
}

var errBoom = errors.New("boom")

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestRelay(transcriber repositories.StreamingTranscriber, assistant Assistant, conversations repositories.ConversationRepository, publisher SegmentPublisher) *Relay {
	r := NewRelay(transcriber, assistant, conversations, publisher, Config{}, nil, nil)
	r.now = func() time.Time { return fixedNow }
	r.newID = func() string { return "session-1" }
	return r
}

// serveAsync runs Serve in the background and returns a channel yielding
// the finished session
func serveAsync(r *Relay, client ClientConn) <-chan *Session {
	done := make(chan *Session, 1)
	go func() {
		done <- r.Serve(context.Background(), client)
	}()
	return done
}

func waitSession(t *testing.T, done <-chan *Session) *Session {
	t.Helper()
	select {
	case sess := <-done:
		return sess
	case <-time.After(2 * time.Second):
		t.Fatal("session did not terminate")
		return nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type panickingPublisher struct{}

func (panickingPublisher) PublishSegment(ctx context.Context, sessionID string, sequence int, segment entities.TranscriptSegment) error {
	panic("publisher exploded")
}
