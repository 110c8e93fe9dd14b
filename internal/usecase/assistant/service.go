// Package assistant answers questions from the knowledge base with a hosted
// generation model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	"github.com/johnquangdev/call-insights/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-insights/internal/infrastructure/pdf"
)

// Fallback answers returned instead of errors
const (
	NoDocumentsMessage     = "I apologize, but I couldn't find any readable documents in the knowledge base to help answer your question."
	NoAnswerMessage        = "I apologize, but I couldn't generate a proper response at the moment."
	UnexpectedErrorMessage = "An unexpected error occurred while getting assistance."
	awsErrorFormat         = "An AWS error occurred: %s"
)

const contextCacheKey = "knowledge-context"

const promptTemplate = `You are a helpful AI assistant. Use the following context to answer the question.
If you cannot find the answer in the context, say so.

Context:
%s

Question: %s

Answer:`

// DefaultParams are the sampling parameters used for every answer
var DefaultParams = repositories.GenerationParams{
	MaxTokens:     512,
	Temperature:   0.7,
	TopP:          0.9,
	StopSequences: []string{},
}

// ContextCache caches the assembled knowledge context between questions
type ContextCache interface {
	Get(key string) (string, bool)
	Set(key string, value string, expiration time.Duration)
	Delete(key string)
}

// Config holds answer generation settings
type Config struct {
	Bucket          string
	KnowledgePrefix string
	Params          repositories.GenerationParams
	Timeout         time.Duration
	ContextCacheTTL time.Duration
}

// Service implements answer generation over the knowledge base
type Service struct {
	store      repositories.ObjectStore
	model      repositories.GenerationModel
	cache      ContextCache
	extractPDF func([]byte) (string, error)
	cfg        Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewService creates an assistant. cache may be nil to rebuild the context
// for every question.
func NewService(store repositories.ObjectStore, model repositories.GenerationModel, cache ContextCache, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		model:      model,
		cache:      cache,
		extractPDF: pdf.ExtractText,
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
	}
}

// BuildPrompt embeds the knowledge context and the question in the fixed template
func BuildPrompt(knowledge, question string) string {
	return fmt.Sprintf(promptTemplate, knowledge, question)
}

// GenerateAssistance answers query from the knowledge base. It never fails:
// every error path resolves to a descriptive fallback answer.
func (s *Service) GenerateAssistance(ctx context.Context, query string) (answer string) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Panic while getting assistance", zap.Any("panic", p), zap.Stack("stack"))
			answer = s.fallback("panic", UnexpectedErrorMessage)
		}
		if s.metrics != nil {
			s.metrics.AssistanceLatency.Observe(time.Since(start).Seconds())
		}
	}()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	knowledge, err := s.knowledgeContext(ctx)
	if err != nil {
		return s.errorAnswer("context", err)
	}
	if strings.TrimSpace(knowledge) == "" {
		return s.fallback("no_documents", NoDocumentsMessage)
	}

	candidates, err := s.model.Invoke(ctx, BuildPrompt(knowledge, query), s.cfg.Params)
	if err != nil {
		return s.errorAnswer("generation", err)
	}
	if len(candidates) == 0 {
		return s.fallback("no_candidates", NoAnswerMessage)
	}
	return candidates[0].OutputText
}

// InvalidateContext drops the cached knowledge context
func (s *Service) InvalidateContext() {
	if s.cache != nil {
		s.cache.Delete(contextCacheKey)
	}
}

// knowledgeContext returns every readable document joined by blank lines
func (s *Service) knowledgeContext(ctx context.Context) (string, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(contextCacheKey); ok {
			return cached, nil
		}
	}

	objects, err := s.store.List(ctx, s.cfg.Bucket, s.cfg.KnowledgePrefix)
	if err != nil {
		return "", fmt.Errorf("failed to list knowledge base: %w", err)
	}

	var docs []string
	for _, obj := range objects {
		// Folder marker
		if obj.Key == s.cfg.KnowledgePrefix {
			continue
		}

		data, err := s.store.Get(ctx, s.cfg.Bucket, obj.Key)
		if err != nil {
			return "", fmt.Errorf("failed to fetch %s: %w", obj.Key, err)
		}

		text, ok := s.decodeDocument(obj.Key, data)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, text)
	}

	knowledge := strings.Join(docs, "\n\n")
	if s.cache != nil && s.cfg.ContextCacheTTL > 0 {
		s.cache.Set(contextCacheKey, knowledge, s.cfg.ContextCacheTTL)
	}
	return knowledge, nil
}

// decodeDocument returns the text of a document, or false when it must be skipped
func (s *Service) decodeDocument(key string, data []byte) (string, bool) {
	if strings.HasSuffix(strings.ToLower(key), ".pdf") {
		text, err := s.extractPDF(data)
		if err != nil {
			s.logger.Error("Error extracting text from PDF", zap.String("key", key), zap.Error(err))
			s.skipped("pdf_extract")
			return "", false
		}
		return text, true
	}

	if !utf8.Valid(data) {
		s.logger.Warn("Could not decode file as text", zap.String("key", key))
		s.skipped("not_utf8")
		return "", false
	}
	return string(data), true
}

// errorAnswer converts an error into a user-visible answer
func (s *Service) errorAnswer(stage string, err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		s.logger.Error("AWS error while getting assistance",
			zap.String("stage", stage),
			zap.String("code", apiErr.ErrorCode()),
			zap.String("message", apiErr.ErrorMessage()),
		)
		return s.fallback("aws_error", fmt.Sprintf(awsErrorFormat, apiErr.ErrorMessage()))
	}

	s.logger.Error("Unexpected error while getting assistance", zap.String("stage", stage), zap.Error(err))
	return s.fallback("unexpected", UnexpectedErrorMessage)
}

func (s *Service) fallback(reason, message string) string {
	if s.metrics != nil {
		s.metrics.AssistanceFallbacks.WithLabelValues(reason).Inc()
	}
	return message
}

func (s *Service) skipped(reason string) {
	if s.metrics != nil {
		s.metrics.DocumentsSkipped.WithLabelValues(reason).Inc()
	}
}
