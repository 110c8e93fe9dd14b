// Package bedrock invokes Titan text models through the Bedrock runtime.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/johnquangdev/call-insights/internal/domain/repositories"
)

// InvokeModelAPI is the subset of the Bedrock runtime client used here
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type titanRequest struct {
	InputText            string                `json:"inputText"`
	TextGenerationConfig titanGenerationConfig `json:"textGenerationConfig"`
}

type titanGenerationConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	StopSequences []string `json:"stopSequences"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

// TitanModel implements repositories.GenerationModel
type TitanModel struct {
	api     InvokeModelAPI
	modelID string
}

// NewTitanModel creates a Titan text generator for modelID
func NewTitanModel(api InvokeModelAPI, modelID string) *TitanModel {
	return &TitanModel{api: api, modelID: modelID}
}

// NewTitanModelFromConfig creates a generator backed by a Bedrock runtime client
func NewTitanModelFromConfig(awsCfg aws.Config, modelID string) *TitanModel {
	return NewTitanModel(bedrockruntime.NewFromConfig(awsCfg), modelID)
}

// Invoke sends prompt with params and returns every result as a candidate.
// Client errors are wrapped, so smithy.APIError stays reachable via errors.As.
func (m *TitanModel) Invoke(ctx context.Context, prompt string, params repositories.GenerationParams) ([]repositories.Candidate, error) {
	stop := params.StopSequences
	if stop == nil {
		stop = []string{}
	}

	body, err := json.Marshal(titanRequest{
		InputText: prompt,
		TextGenerationConfig: titanGenerationConfig{
			MaxTokenCount: params.MaxTokens,
			Temperature:   params.Temperature,
			TopP:          params.TopP,
			StopSequences: stop,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := m.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(m.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model %s: %w", m.modelID, err)
	}

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	candidates := make([]repositories.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		candidates = append(candidates, repositories.Candidate{OutputText: r.OutputText})
	}
	return candidates, nil
}
