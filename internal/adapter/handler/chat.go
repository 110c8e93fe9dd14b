package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/errors"
	"github.com/johnquangdev/call-insights/internal/adapter/dto/chat"
)

// Assistant answers questions from the knowledge base
type Assistant interface {
	GenerateAssistance(ctx context.Context, query string) string
}

// Chat handles knowledge-base chat requests
type Chat struct {
	assistant Assistant
	logger    *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistant Assistant, logger *zap.Logger) *Chat {
	return &Chat{
		assistant: assistant,
		logger:    logger,
	}
}

// Chat handles POST /api/chat
// @Summary      Ask the knowledge base
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      chat.ChatRequest  true  "Question"
// @Success      200      {object}  chat.ChatResponse
// @Failure      400      {object}  map[string]interface{}  "Missing message"
// @Router       /api/chat [post]
func (h *Chat) Chat(c echo.Context) error {
	var req chat.ChatRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrMissingMessage())
	}

	answer := h.assistant.GenerateAssistance(c.Request().Context(), req.Message)

	return c.JSON(http.StatusOK, chat.ChatResponse{Response: answer})
}
