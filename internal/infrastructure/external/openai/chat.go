// Package openai generates answers through any OpenAI-compatible chat
// completion API (OpenAI, Groq, local gateways).
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	"github.com/johnquangdev/call-insights/pkg/config"
)

// ChatModel implements repositories.GenerationModel over chat completions
type ChatModel struct {
	client *goopenai.Client
	model  string
}

// NewChatModel creates a chat model client. An empty BaseURL keeps the
// library default endpoint.
func NewChatModel(cfg *config.GenerationConfig) *ChatModel {
	clientCfg := goopenai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	model := cfg.OpenAIModel
	if model == "" {
		model = goopenai.GPT4oMini
	}

	return &ChatModel{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Invoke sends the prompt as a single user message. Every returned choice
// becomes a candidate.
func (m *ChatModel) Invoke(ctx context.Context, prompt string, params repositories.GenerationParams) ([]repositories.Candidate, error) {
	req := goopenai.ChatCompletionRequest{
		Model: m.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   params.MaxTokens,
		Temperature: float32(params.Temperature),
		TopP:        float32(params.TopP),
	}
	if len(params.StopSequences) > 0 {
		req.Stop = params.StopSequences
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	candidates := make([]repositories.Candidate, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		candidates = append(candidates, repositories.Candidate{OutputText: choice.Message.Content})
	}
	return candidates, nil
}
