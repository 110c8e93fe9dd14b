package presenter

import (
	"github.com/johnquangdev/call-insights/internal/adapter/dto/transcription"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// TranscriptionCompletedMessage accompanies every successful transcription
const TranscriptionCompletedMessage = "Transcription completed successfully"

// ToTranscribeResponse converts speaker turns to the response DTO
func ToTranscribeResponse(turns []entities.SpeakerTurn) *transcription.TranscribeResponse {
	results := make([]transcription.SpeakerTurnResponse, 0, len(turns))
	for _, t := range turns {
		results = append(results, transcription.SpeakerTurnResponse{
			Speaker: string(t.Speaker),
			Text:    t.Text,
		})
	}
	return &transcription.TranscribeResponse{
		Message: TranscriptionCompletedMessage,
		Results: results,
	}
}
