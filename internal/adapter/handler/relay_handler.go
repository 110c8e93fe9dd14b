package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/usecase/relay"
)

const (
	maxAudioFrameSize = 1 << 20
	clientWriteWait   = 10 * time.Second
)

// SessionRunner runs one streaming session to completion
type SessionRunner interface {
	Serve(ctx context.Context, client relay.ClientConn) *relay.Session
}

// Stream upgrades clients into real-time transcription sessions
type Stream struct {
	relay    SessionRunner
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewStreamHandler creates a streaming handler accepting the given origins.
// An empty list accepts any origin.
func NewStreamHandler(runner SessionRunner, allowedOrigins []string, logger *zap.Logger) *Stream {
	return &Stream{
		relay: runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// Transcribe handles GET /ws/transcribe
// @Summary      Stream audio for live transcription and assistance
// @Tags         Streaming
// @Router       /ws/transcribe [get]
func (h *Stream) Transcribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error
		if h.logger != nil {
			h.logger.Warn("⚠️ WebSocket upgrade failed",
				zap.String("request_id", getRequestID(c)),
				zap.Error(err),
			)
		}
		return nil
	}
	conn.SetReadLimit(maxAudioFrameSize)

	h.relay.Serve(c.Request().Context(), newWSClientConn(conn, h.logger))
	return nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// wsClientConn adapts a client WebSocket to relay.ClientConn
type wsClientConn struct {
	conn      *websocket.Conn
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

func newWSClientConn(conn *websocket.Conn, logger *zap.Logger) *wsClientConn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &wsClientConn{conn: conn, logger: logger}
}

// ReadAudio returns the next binary frame. Text frames carry no audio and
// are skipped.
func (w *wsClientConn) ReadAudio(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = w.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		msgType, data, err := w.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		if msgType != websocket.BinaryMessage {
			w.logger.Debug("Ignoring non-binary client frame", zap.Int("type", msgType))
			continue
		}
		return data, nil
	}
}

func (w *wsClientConn) WriteJSON(v any) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(clientWriteWait)); err != nil {
		return err
	}
	return w.conn.WriteJSON(v)
}

func (w *wsClientConn) Close() error {
	w.closeOnce.Do(func() {
		_ = w.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(clientWriteWait),
		)
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}
