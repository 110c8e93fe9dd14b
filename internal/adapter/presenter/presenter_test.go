package presenter

import (
	"testing"
	"time"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

func TestToDocumentListResponse(t *testing.T) {
	modified := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	resp := ToDocumentListResponse([]entities.KnowledgeDocument{
		{ID: "a.pdf", Name: "a.pdf", Size: 10, LastModified: modified, URL: "https://signed/a"},
	})

	if resp.Total != 1 || len(resp.Documents) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Documents[0].URL != "https://signed/a" || !resp.Documents[0].LastModified.Equal(modified) {
		t.Fatalf("unexpected document: %+v", resp.Documents[0])
	}
}

func TestToDocumentListResponse_EmptyIsNotNull(t *testing.T) {
	resp := ToDocumentListResponse(nil)
	if resp.Documents == nil {
		t.Fatal("expected empty slice so the field encodes as []")
	}
}

func TestToTranscribeResponse(t *testing.T) {
	resp := ToTranscribeResponse([]entities.SpeakerTurn{
		{Speaker: entities.SpeakerAgent, Text: "hi there"},
		{Speaker: entities.SpeakerCustomer, Text: "hello"},
	})

	if resp.Message != TranscriptionCompletedMessage {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if len(resp.Results) != 2 || resp.Results[0].Speaker != "Agent" || resp.Results[1].Speaker != "Customer" {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
}
