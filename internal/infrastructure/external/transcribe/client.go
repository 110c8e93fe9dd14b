package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
)

const (
	handshakeTimeout = 10 * time.Second
	pingInterval     = 15 * time.Second
	controlTimeout   = 5 * time.Second
	writeTimeout     = 10 * time.Second
)

// Client opens streaming transcription sessions
type Client struct {
	presigner *Presigner
	dialer    *websocket.Dialer
	logger    *zap.Logger
}

// NewClient creates a streaming client
func NewClient(presigner *Presigner, logger *zap.Logger) *Client {
	return &Client{
		presigner: presigner,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		logger: logger,
	}
}

// Open presigns the endpoint and connects. Both signing and connection
// failures are returned to the caller.
func (c *Client) Open(ctx context.Context) (repositories.TranscriptionStream, error) {
	signedURL, err := c.presigner.PresignURL(ctx)
	if err != nil {
		return nil, err
	}

	conn, resp, err := c.dialer.DialContext(ctx, signedURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to transcription service (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to transcription service: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("Connected to streaming transcription service")
	}

	s := &Session{
		conn: conn,
		done: make(chan struct{}),
	}
	go s.keepAlive()
	return s, nil
}

// Session is one open streaming connection
type Session struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// SendAudio wraps chunk in an audio event and writes it as one text frame.
// A write to a stalled peer fails after writeTimeout or when ctx is done.
func (s *Session) SendAudio(ctx context.Context, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := EncodeAudioEvent(chunk)
	if err != nil {
		return fmt.Errorf("failed to encode audio event: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	// The net.Conn deadline is safe to move from another goroutine
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.UnderlyingConn().SetWriteDeadline(time.Now())
	})
	defer stop()

	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to send audio event: %w", err)
	}
	return nil
}

// Recv reads until a text message arrives and decodes it. Binary frames are
// ignored. Cancelling ctx unblocks the read.
func (s *Session) Recv(ctx context.Context) ([]entities.TranscriptEvent, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return DecodeTranscriptEvents(data)
	}
}

// Close sends a normal close frame and closes the connection. Safe to call
// more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		// The peer may already be gone, so the close frame is best-effort
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(controlTimeout),
		)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// keepAlive pings the service so dead connections surface as read errors
func (s *Session) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(controlTimeout)); err != nil {
				return
			}
		}
	}
}
