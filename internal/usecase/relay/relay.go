// Package relay bridges a client audio connection to a remote streaming
// transcription session and pushes generated answers back for every
// finalized utterance.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	"github.com/johnquangdev/call-insights/internal/infrastructure/metrics"
)

// DefaultSaveTimeout bounds the conversation write at teardown
const DefaultSaveTimeout = 10 * time.Second

var errRelayClosed = errors.New("relay is shutting down")

// ClientConn is the client side of a session. ReadAudio returns the next
// binary audio chunk and must unblock when ctx is done.
type ClientConn interface {
	ReadAudio(ctx context.Context) ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Assistant answers a finalized utterance. It never fails.
type Assistant interface {
	GenerateAssistance(ctx context.Context, query string) string
}

// SegmentPublisher receives every finalized segment as it is appended
type SegmentPublisher interface {
	PublishSegment(ctx context.Context, sessionID string, sequence int, segment entities.TranscriptSegment) error
}

// Config holds relay settings
type Config struct {
	SaveTimeout time.Duration
}

// Relay runs streaming sessions. One Relay serves any number of concurrent
// sessions; sessions share nothing but the injected collaborators.
type Relay struct {
	transcriber   repositories.StreamingTranscriber
	assistant     Assistant
	conversations repositories.ConversationRepository
	publisher     SegmentPublisher
	cfg           Config
	logger        *zap.Logger
	metrics       *metrics.Metrics

	now   func() time.Time
	newID func() string

	// base is cancelled by Shutdown and ends every live session
	base    context.Context
	stopAll context.CancelFunc

	mu       sync.Mutex
	closing  bool
	sessions sync.WaitGroup
	assists  sync.WaitGroup
}

// NewRelay creates a relay. publisher and m may be nil.
func NewRelay(
	transcriber repositories.StreamingTranscriber,
	assistant Assistant,
	conversations repositories.ConversationRepository,
	publisher SegmentPublisher,
	cfg Config,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	base, stopAll := context.WithCancel(context.Background())
	return &Relay{
		transcriber:   transcriber,
		assistant:     assistant,
		conversations: conversations,
		publisher:     publisher,
		cfg:           cfg,
		logger:        logger,
		metrics:       m,
		now:           time.Now,
		newID:         uuid.NewString,
		base:          base,
		stopAll:       stopAll,
	}
}

// Serve runs one session over client and blocks until it has terminated.
// The client is always closed on return. The session also ends when ctx is
// done or Shutdown is called.
func (r *Relay) Serve(ctx context.Context, client ClientConn) *Session {
	sess := newSession(r.newID(), r.now(), client)
	sess.setState(StateInit)

	log := r.logger.With(zap.String("session_id", sess.id))
	log.Info("🔌 Client connected")
	if r.metrics != nil {
		r.metrics.SessionStarted()
	}

	// sessions.Done must run after teardown
	admitted := r.admit()
	if admitted {
		defer r.sessions.Done()
	}
	defer r.teardown(sess, log)

	if !admitted {
		log.Warn("⚠️ Rejecting session during shutdown")
		if sendErr := sess.send(ErrorMessage{Error: "Transcription error: " + errRelayClosed.Error()}); sendErr != nil {
			log.Debug("Error frame not delivered", zap.Error(sendErr))
		}
		return sess
	}

	ctx, cancelSession := context.WithCancel(ctx)
	defer cancelSession()
	stopWatch := context.AfterFunc(r.base, cancelSession)
	defer stopWatch()

	remote, err := r.transcriber.Open(ctx)
	if err != nil {
		log.Error("❌ Failed to open transcription stream", zap.Error(err))
		if r.metrics != nil {
			r.metrics.SessionsFailed.WithLabelValues("open").Inc()
		}
		if sendErr := sess.send(ErrorMessage{Error: "Transcription error: " + err.Error()}); sendErr != nil {
			log.Debug("Error frame not delivered", zap.Error(sendErr))
		}
		return sess
	}
	sess.remote = remote
	sess.setState(StateStreaming)
	log.Info("🎙️ Transcription stream opened")

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		defer r.recoverTask("uplink", log)
		r.uplink(streamCtx, sess, log)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		defer r.recoverTask("downlink", log)
		r.downlink(streamCtx, sess, log)
		return nil
	})
	_ = g.Wait()

	return sess
}

// Shutdown refuses new sessions, ends every live one and waits until each
// has torn down, then waits for in-flight answers. It returns ctx's error if
// either wait outlasts ctx.
func (r *Relay) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()
	r.stopAll()

	if err := waitGroup(ctx, &r.sessions); err != nil {
		return fmt.Errorf("waiting for sessions: %w", err)
	}
	if err := waitGroup(ctx, &r.assists); err != nil {
		return fmt.Errorf("waiting for assistance: %w", err)
	}
	return nil
}

// WaitAssistance blocks until every in-flight answer has been delivered or
// dropped. Only call it once the sessions that started them have ended.
func (r *Relay) WaitAssistance() {
	r.assists.Wait()
}

func (r *Relay) admit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closing {
		return false
	}
	r.sessions.Add(1)
	return true
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recoverTask ends a panicking task in place; it must be deferred directly
func (r *Relay) recoverTask(task string, log *zap.Logger) {
	if p := recover(); p != nil {
		log.Error("Panic in relay task",
			zap.String("task", task),
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
		if r.metrics != nil {
			r.metrics.SessionsFailed.WithLabelValues("panic").Inc()
		}
	}
}

// uplink forwards client audio in arrival order until either side fails
func (r *Relay) uplink(ctx context.Context, sess *Session, log *zap.Logger) {
	for {
		chunk, err := sess.client.ReadAudio(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Info("Client audio stream ended", zap.Error(err))
			}
			return
		}
		if err := sess.remote.SendAudio(ctx, chunk); err != nil {
			if ctx.Err() == nil {
				log.Warn("⚠️ Failed to forward audio", zap.Error(err))
			}
			return
		}
		if r.metrics != nil {
			r.metrics.AudioFramesForwarded.Inc()
			r.metrics.AudioBytesForwarded.Add(float64(len(chunk)))
		}
	}
}

// downlink forwards transcript events in receipt order. Malformed messages
// are skipped; any other receive or client write failure ends the task.
func (r *Relay) downlink(ctx context.Context, sess *Session, log *zap.Logger) {
	for {
		events, err := sess.remote.Recv(ctx)
		if err != nil {
			if errors.Is(err, entities.ErrMalformedEvent) {
				log.Warn("⚠️ Skipping malformed transcript event", zap.Error(err))
				if r.metrics != nil {
					r.metrics.EventsMalformed.Inc()
				}
				continue
			}
			if ctx.Err() == nil {
				log.Info("Transcription stream ended", zap.Error(err))
			}
			return
		}
		for _, event := range events {
			if err := r.handleEvent(ctx, sess, event, log); err != nil {
				log.Info("Client closed while forwarding transcript", zap.Error(err))
				return
			}
		}
	}
}

func (r *Relay) handleEvent(ctx context.Context, sess *Session, event entities.TranscriptEvent, log *zap.Logger) error {
	if strings.TrimSpace(event.Text) == "" {
		return nil
	}

	if err := sess.send(newTranscriptMessage(event.Text, event.IsFinal)); err != nil {
		return err
	}
	if r.metrics != nil {
		r.metrics.RecordTranscript(event.IsFinal)
	}
	if !event.IsFinal {
		return nil
	}

	segment := entities.TranscriptSegment{Text: event.Text, Timestamp: r.now()}
	sess.segments = append(sess.segments, segment)
	if r.metrics != nil {
		r.metrics.SegmentsRecorded.Inc()
	}

	if r.publisher != nil {
		if err := r.publisher.PublishSegment(ctx, sess.id, len(sess.segments), segment); err != nil {
			log.Warn("⚠️ Failed to publish segment", zap.Error(err))
		}
	}

	r.assist(ctx, sess, event.Text, log)
	return nil
}

// assist answers query off the forwarding path. It outlives session
// cancellation; a result arriving after the client closed is dropped.
func (r *Relay) assist(ctx context.Context, sess *Session, query string, log *zap.Logger) {
	if r.assistant == nil {
		return
	}
	actx := context.WithoutCancel(ctx)

	r.assists.Add(1)
	go func() {
		defer r.assists.Done()
		defer r.recoverTask("assistance", log)

		suggestion := r.assistant.GenerateAssistance(actx, query)
		if err := sess.send(newAssistanceMessage(suggestion)); err != nil {
			log.Debug("Assistance dropped", zap.Error(err))
		}
	}()
}

// teardown persists the conversation and closes both channels. It runs once
// per session however many paths reach it.
func (r *Relay) teardown(sess *Session, log *zap.Logger) {
	sess.teardownOnce.Do(func() {
		sess.setState(StateClosing)

		if len(sess.segments) > 0 && r.conversations != nil {
			r.persist(sess, log)
		} else {
			log.Info("No finalized segments, skipping conversation save")
		}

		if sess.remote != nil {
			if err := sess.remote.Close(); err != nil {
				log.Debug("Transcription stream close", zap.Error(err))
			}
		}
		if err := sess.closeClient(); err != nil {
			log.Debug("Client close", zap.Error(err))
		}

		sess.setState(StateTerminated)
		if r.metrics != nil {
			r.metrics.SessionEnded(r.now().Sub(sess.startedAt).Seconds())
		}
		log.Info("👋 Session terminated", zap.Int("segments", len(sess.segments)))
	})
}

func (r *Relay) persist(sess *Session, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.SaveTimeout)
	defer cancel()

	record := entities.NewConversationRecord(sess.id, sess.startedAt, sess.segments)
	if err := r.conversations.Put(ctx, sess.id, record); err != nil {
		log.Error("❌ Failed to save conversation", zap.Error(err))
		return
	}
	log.Info("💾 Conversation saved", zap.Int("segments", len(sess.segments)))
}
