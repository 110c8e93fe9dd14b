package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/errors"
	"github.com/johnquangdev/call-insights/internal/adapter/dto/transcription"
	"github.com/johnquangdev/call-insights/internal/adapter/presenter"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// TranscriptionService runs batch transcription of stored recordings
type TranscriptionService interface {
	TranscribeRecording(ctx context.Context, audioKey string) ([]entities.SpeakerTurn, error)
}

// Transcription handles batch transcription requests
type Transcription struct {
	service TranscriptionService
	logger  *zap.Logger
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service TranscriptionService, logger *zap.Logger) *Transcription {
	return &Transcription{
		service: service,
		logger:  logger,
	}
}

// Transcribe handles POST /api/transcribe
// @Summary      Transcribe a stored recording into speaker turns
// @Tags         Transcription
// @Accept       json
// @Produce      json
// @Param        request  body      transcription.TranscribeRequest  true  "Recording key"
// @Success      200      {object}  transcription.TranscribeResponse
// @Failure      400      {object}  map[string]interface{}  "Audio key is required"
// @Failure      404      {object}  map[string]interface{}  "Recording not found"
// @Failure      500      {object}  map[string]interface{}  "Transcription failed"
// @Router       /api/transcribe [post]
func (h *Transcription) Transcribe(c echo.Context) error {
	var req transcription.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if req.AudioKey == "" {
		return HandleError(h.logger, c, errors.ErrMissingAudioKey())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	turns, err := h.service.TranscribeRecording(c.Request().Context(), req.AudioKey)
	if err != nil {
		switch {
		case stdErrors.Is(err, entities.ErrObjectNotFound):
			return HandleError(h.logger, c, errors.ErrNotFound("Recording"))
		case stdErrors.Is(err, entities.ErrTranscriptionFailed):
			return HandleError(h.logger, c, errors.ErrTranscriptionFailed(err))
		}
		return HandleError(h.logger, c, errors.ErrExternalAPIFailed("transcription", err))
	}

	return c.JSON(http.StatusOK, presenter.ToTranscribeResponse(turns))
}
