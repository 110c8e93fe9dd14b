package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	"github.com/johnquangdev/call-insights/pkg/config"
)

func TestChatModel_Invoke(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Offer a refund."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	model := NewChatModel(&config.GenerationConfig{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: srv.URL + "/v1",
		OpenAIModel:   "llama-3.1-8b-instant",
	})

	candidates, err := model.Invoke(context.Background(), "What do we offer?", repositories.GenerationParams{
		MaxTokens:   512,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].OutputText != "Offer a refund." {
		t.Fatalf("unexpected candidates %+v", candidates)
	}

	if got["model"] != "llama-3.1-8b-instant" {
		t.Errorf("unexpected model %v", got["model"])
	}
	if got["max_tokens"] != float64(512) {
		t.Errorf("unexpected max_tokens %v", got["max_tokens"])
	}
	if _, ok := got["stop"]; ok {
		t.Errorf("expected no stop sequences, got %v", got["stop"])
	}
}

func TestChatModel_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	}))
	defer srv.Close()

	model := NewChatModel(&config.GenerationConfig{OpenAIAPIKey: "k", OpenAIBaseURL: srv.URL + "/v1"})

	if _, err := model.Invoke(context.Background(), "q", repositories.GenerationParams{}); err == nil {
		t.Fatal("expected error")
	}
}
