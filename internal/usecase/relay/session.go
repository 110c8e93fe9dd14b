package relay

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
)

// State is the lifecycle stage of a streaming session
type State int32

const (
	StateInit State = iota
	StateStreaming
	StateClosing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateStreaming:
		return "STREAMING"
	case StateClosing:
		return "CLOSING"
	case StateTerminated:
		return "TERMINATED"
	}
	return "UNKNOWN"
}

var errClientClosed = errors.New("client channel closed")

// Session is one client connection bridged to one remote transcription stream.
// segments is written only by the downlink task and read only at teardown,
// after both tasks have returned.
type Session struct {
	id        string
	startedAt time.Time
	state     atomic.Int32

	client       ClientConn
	writeMu      sync.Mutex
	clientClosed bool

	remote repositories.TranscriptionStream

	segments []entities.TranscriptSegment

	teardownOnce sync.Once
}

func newSession(id string, startedAt time.Time, client ClientConn) *Session {
	return &Session{
		id:        id,
		startedAt: startedAt,
		client:    client,
	}
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// StartedAt returns when the client connected
func (s *Session) StartedAt() time.Time { return s.startedAt }

// State returns the current lifecycle state
func (s *Session) State() State { return State(s.state.Load()) }

// Segments returns a copy of the finalized segments. Only meaningful once
// the session has terminated.
func (s *Session) Segments() []entities.TranscriptSegment {
	out := make([]entities.TranscriptSegment, len(s.segments))
	copy(out, s.segments)
	return out
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// send writes one JSON message to the client. Writes are serialized, and
// writes after close fail with errClientClosed instead of reaching the conn.
func (s *Session) send(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.clientClosed {
		return errClientClosed
	}
	return s.client.WriteJSON(v)
}

// closeClient closes the client channel once
func (s *Session) closeClient() error {
	s.writeMu.Lock()
	if s.clientClosed {
		s.writeMu.Unlock()
		return nil
	}
	s.clientClosed = true
	s.writeMu.Unlock()

	return s.client.Close()
}
