package transcribe

import (
	"encoding/json"
	"fmt"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// RemoteError is an exception event sent by the transcription service
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("transcription service error: %s", e.Message)
}

type audioEventEnvelope struct {
	AudioEvent audioEvent `json:"audio_event"`
}

// AudioChunk is a []byte so encoding/json emits it as standard base64
type audioEvent struct {
	AudioChunk []byte `json:"audio_chunk"`
}

type transcriptEnvelope struct {
	TranscriptEvent *transcriptEvent `json:"TranscriptEvent"`
	Message         string           `json:"Message"`
}

type transcriptEvent struct {
	Transcript *transcriptBody `json:"Transcript"`
}

type transcriptBody struct {
	Results []transcriptResult `json:"Results"`
}

type transcriptResult struct {
	Alternatives []transcriptAlternative `json:"Alternatives"`
	IsPartial    *bool                   `json:"IsPartial"`
}

type transcriptAlternative struct {
	Transcript string `json:"Transcript"`
}

// EncodeAudioEvent wraps a raw audio chunk in the audio-event envelope
func EncodeAudioEvent(chunk []byte) ([]byte, error) {
	if chunk == nil {
		chunk = []byte{}
	}
	return json.Marshal(audioEventEnvelope{AudioEvent: audioEvent{AudioChunk: chunk}})
}

// DecodeTranscriptEvents extracts the first alternative of every result.
// A result without IsPartial is treated as partial. Messages that carry no
// transcript decode to no events.
func DecodeTranscriptEvents(data []byte) ([]entities.TranscriptEvent, error) {
	var envelope transcriptEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrMalformedEvent, err)
	}

	if envelope.TranscriptEvent == nil {
		if envelope.Message != "" {
			return nil, &RemoteError{Message: envelope.Message}
		}
		return nil, nil
	}
	if envelope.TranscriptEvent.Transcript == nil {
		return nil, nil
	}

	results := envelope.TranscriptEvent.Transcript.Results
	events := make([]entities.TranscriptEvent, 0, len(results))
	for _, result := range results {
		if len(result.Alternatives) == 0 {
			continue
		}
		events = append(events, entities.TranscriptEvent{
			Text:    result.Alternatives[0].Transcript,
			IsFinal: result.IsPartial != nil && !*result.IsPartial,
		})
	}
	return events, nil
}
