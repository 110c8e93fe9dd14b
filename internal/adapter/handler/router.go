package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnquangdev/call-insights/internal/adapter/dto/common"
	"github.com/johnquangdev/call-insights/pkg/config"
)

const rootMessage = "Call Insights API"

// Router holds all handlers
type Router struct {
	cfg                  *config.Config
	knowledgeHandler     *Knowledge
	chatHandler          *Chat
	transcriptionHandler *Transcription
	streamHandler        *Stream
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, knowledgeHandler *Knowledge, chatHandler *Chat, transcriptionHandler *Transcription, streamHandler *Stream) *Router {
	return &Router{
		cfg:                  cfg,
		knowledgeHandler:     knowledgeHandler,
		chatHandler:          chatHandler,
		transcriptionHandler: transcriptionHandler,
		streamHandler:        streamHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/", rt.root)
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	rt.setupKnowledgeRoutes(api)
	rt.setupChatRoutes(api)
	rt.setupTranscriptionRoutes(api)

	if rt.streamHandler != nil {
		e.GET("/ws/transcribe", rt.streamHandler.Transcribe)
	} else {
		e.GET("/ws/transcribe", rt.notImplemented)
	}
}

// setupKnowledgeRoutes configures knowledge-base and recording routes
func (rt *Router) setupKnowledgeRoutes(g *echo.Group) {
	if rt.knowledgeHandler == nil {
		g.POST("/upload", rt.notImplemented)
		g.POST("/upload-audio", rt.notImplemented)
		g.GET("/knowledge-base", rt.notImplemented)
		g.GET("/analysis", rt.notImplemented)
		g.DELETE("/delete/:id", rt.notImplemented)
		return
	}
	g.POST("/upload", rt.knowledgeHandler.Upload)
	g.POST("/upload-audio", rt.knowledgeHandler.UploadAudio)
	g.GET("/knowledge-base", rt.knowledgeHandler.List)
	g.GET("/analysis", rt.knowledgeHandler.Analysis)
	g.DELETE("/delete/:id", rt.knowledgeHandler.Delete)
}

func (rt *Router) setupChatRoutes(g *echo.Group) {
	if rt.chatHandler == nil {
		g.POST("/chat", rt.notImplemented)
		return
	}
	g.POST("/chat", rt.chatHandler.Chat)
}

func (rt *Router) setupTranscriptionRoutes(g *echo.Group) {
	if rt.transcriptionHandler == nil {
		g.POST("/transcribe", rt.notImplemented)
		return
	}
	g.POST("/transcribe", rt.transcriptionHandler.Transcribe)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

func (rt *Router) root(c echo.Context) error {
	return c.JSON(http.StatusOK, common.RootResponse{Message: rootMessage})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, common.HealthResponse{
		Status:      "ok",
		Environment: env,
	})
}
