package handler

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/errors"
	"github.com/johnquangdev/call-insights/internal/adapter/dto/common"
	"github.com/johnquangdev/call-insights/internal/adapter/dto/knowledge"
	"github.com/johnquangdev/call-insights/internal/adapter/presenter"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	knowledgeUsecase "github.com/johnquangdev/call-insights/internal/usecase/knowledge"
)

const (
	documentUploadedMessage = "File uploaded successfully"
	audioUploadedMessage    = "Audio uploaded successfully"
	documentDeletedMessage  = "File deleted successfully"
)

// KnowledgeService is the knowledge-base use case behind the handler
type KnowledgeService interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (*knowledgeUsecase.UploadResult, error)
	UploadAudio(ctx context.Context, filename, contentType string, data []byte) (*knowledgeUsecase.UploadResult, error)
	List(ctx context.Context) ([]entities.KnowledgeDocument, error)
	Analysis(ctx context.Context) (*entities.KnowledgeAnalysis, error)
	Delete(ctx context.Context, id string) error
}

// Knowledge handles knowledge-base and recording storage requests
type Knowledge struct {
	service KnowledgeService
	logger  *zap.Logger
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(service KnowledgeService, logger *zap.Logger) *Knowledge {
	return &Knowledge{
		service: service,
		logger:  logger,
	}
}

// Upload handles POST /api/upload
// @Summary      Upload a knowledge document
// @Tags         Knowledge
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document"
// @Success      200   {object}  knowledge.UploadResponse
// @Failure      400   {object}  map[string]interface{}  "Missing file"
// @Failure      500   {object}  map[string]interface{}  "Storage failure"
// @Router       /api/upload [post]
func (h *Knowledge) Upload(c echo.Context) error {
	filename, contentType, data, err := readFormFile(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	res, err := h.service.Upload(c.Request().Context(), filename, contentType, data)
	if err != nil {
		return HandleError(h.logger, c, storageError("upload", err))
	}

	return c.JSON(http.StatusOK, knowledge.UploadResponse{
		Message:  documentUploadedMessage,
		Filename: res.Key,
		URL:      res.URL,
	})
}

// UploadAudio handles POST /api/upload-audio
// @Summary      Upload a call recording
// @Tags         Knowledge
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Recording"
// @Success      200   {object}  knowledge.UploadResponse
// @Router       /api/upload-audio [post]
func (h *Knowledge) UploadAudio(c echo.Context) error {
	filename, contentType, data, err := readFormFile(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	res, err := h.service.UploadAudio(c.Request().Context(), filename, contentType, data)
	if err != nil {
		return HandleError(h.logger, c, storageError("upload audio", err))
	}

	return c.JSON(http.StatusOK, knowledge.UploadResponse{
		Message:  audioUploadedMessage,
		Filename: res.Key,
	})
}

// List handles GET /api/knowledge-base
// @Summary      List knowledge documents
// @Tags         Knowledge
// @Produce      json
// @Success      200  {object}  knowledge.DocumentListResponse
// @Failure      403  {object}  map[string]interface{}  "Bucket access denied"
// @Router       /api/knowledge-base [get]
func (h *Knowledge) List(c echo.Context) error {
	docs, err := h.service.List(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, storageError("list", err))
	}
	return c.JSON(http.StatusOK, presenter.ToDocumentListResponse(docs))
}

// Analysis handles GET /api/analysis
// @Summary      Summarize the knowledge base
// @Tags         Knowledge
// @Produce      json
// @Success      200  {object}  knowledge.AnalysisResponse
// @Router       /api/analysis [get]
func (h *Knowledge) Analysis(c echo.Context) error {
	analysis, err := h.service.Analysis(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, storageError("analysis", err))
	}
	return c.JSON(http.StatusOK, presenter.ToAnalysisResponse(analysis))
}

// Delete handles DELETE /api/delete/:id
// @Summary      Delete a knowledge document
// @Tags         Knowledge
// @Produce      json
// @Param        id   path      string  true  "Document file name"
// @Success      200  {object}  common.MessageResponse
// @Failure      404  {object}  map[string]interface{}  "File not found"
// @Router       /api/delete/{id} [delete]
func (h *Knowledge) Delete(c echo.Context) error {
	var req knowledge.DeleteDocumentRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if err := h.service.Delete(c.Request().Context(), req.ID); err != nil {
		if stdErrors.Is(err, entities.ErrObjectNotFound) {
			return HandleError(h.logger, c, errors.ErrDocumentNotFound(req.ID))
		}
		return HandleError(h.logger, c, storageError("delete", err))
	}

	return c.JSON(http.StatusOK, common.MessageResponse{Message: documentDeletedMessage})
}

// readFormFile reads the multipart "file" field fully into memory
func readFormFile(c echo.Context) (filename, contentType string, data []byte, err error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", "", nil, errors.ErrMissingFile()
	}

	f, err := fh.Open()
	if err != nil {
		return "", "", nil, errors.ErrInternal(err)
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return "", "", nil, errors.ErrInternal(err)
	}
	return fh.Filename, fh.Header.Get(echo.HeaderContentType), data, nil
}
