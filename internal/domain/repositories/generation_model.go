package repositories

import "context"

// GenerationParams are the sampling parameters passed to the model
type GenerationParams struct {
	MaxTokens     int
	Temperature   float64
	TopP          float64
	StopSequences []string
}

// Candidate is one generated completion
type Candidate struct {
	OutputText string
}

// GenerationModel invokes a hosted text generation model
type GenerationModel interface {
	Invoke(ctx context.Context, prompt string, params GenerationParams) ([]Candidate, error)
}
