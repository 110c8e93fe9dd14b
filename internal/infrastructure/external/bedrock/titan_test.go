package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"

	"github.com/johnquangdev/call-insights/internal/domain/repositories"
)

type fakeInvokeAPI struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeInvokeAPI) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestTitanModel_Invoke(t *testing.T) {
	api := &fakeInvokeAPI{body: `{"results":[{"outputText":"Refunds take 5 days."}]}`}
	model := NewTitanModel(api, "amazon.titan-text-express-v1")

	candidates, err := model.Invoke(context.Background(), "prompt", repositories.GenerationParams{
		MaxTokens:   512,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].OutputText != "Refunds take 5 days." {
		t.Fatalf("unexpected candidates %+v", candidates)
	}

	if *api.input.ModelId != "amazon.titan-text-express-v1" {
		t.Errorf("unexpected model id %s", *api.input.ModelId)
	}
	if *api.input.ContentType != "application/json" || *api.input.Accept != "application/json" {
		t.Error("expected json content type and accept")
	}

	var sent map[string]any
	if err := json.Unmarshal(api.input.Body, &sent); err != nil {
		t.Fatalf("request body is not json: %v", err)
	}
	if sent["inputText"] != "prompt" {
		t.Errorf("unexpected inputText %v", sent["inputText"])
	}
	cfg := sent["textGenerationConfig"].(map[string]any)
	if cfg["maxTokenCount"] != float64(512) || cfg["temperature"] != 0.7 || cfg["topP"] != 0.9 {
		t.Errorf("unexpected generation config %v", cfg)
	}
	if stop, ok := cfg["stopSequences"].([]any); !ok || len(stop) != 0 {
		t.Errorf("expected empty stopSequences array, got %v", cfg["stopSequences"])
	}
}

func TestTitanModel_NoResults(t *testing.T) {
	model := NewTitanModel(&fakeInvokeAPI{body: `{"results":[]}`}, "m")

	candidates, err := model.Invoke(context.Background(), "p", repositories.GenerationParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestTitanModel_APIError(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Too many requests"}
	model := NewTitanModel(&fakeInvokeAPI{err: apiErr}, "m")

	_, err := model.Invoke(context.Background(), "p", repositories.GenerationParams{})

	var got smithy.APIError
	if !errors.As(err, &got) {
		t.Fatalf("expected smithy.APIError, got %v", err)
	}
	if got.ErrorMessage() != "Too many requests" {
		t.Errorf("unexpected message %s", got.ErrorMessage())
	}
}

func TestTitanModel_BadResponse(t *testing.T) {
	model := NewTitanModel(&fakeInvokeAPI{body: `not json`}, "m")

	if _, err := model.Invoke(context.Background(), "p", repositories.GenerationParams{}); err == nil {
		t.Fatal("expected decode error")
	}
}
