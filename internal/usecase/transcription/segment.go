package transcription

import (
	"strings"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// SegmentSpeakers groups consecutive items sharing a speaker label into
// turns. A turn is flushed when the label changes and at the end of input.
// The first distinct label is the Agent; every other label is a Customer.
// Items without a label continue the current turn; unlabeled items before
// the first label open the first speaker's turn.
func SegmentSpeakers(items []entities.TranscriptItem) []entities.SpeakerTurn {
	var (
		turns          []entities.SpeakerTurn
		agentLabel     string
		currentSpeaker string
		buf            strings.Builder
	)

	role := func(label string) entities.Speaker {
		if agentLabel == "" || label == agentLabel {
			return entities.SpeakerAgent
		}
		return entities.SpeakerCustomer
	}

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		turns = append(turns, entities.SpeakerTurn{
			Speaker: role(currentSpeaker),
			Text:    buf.String(),
		})
		buf.Reset()
	}

	for _, item := range items {
		if item.Speaker != "" {
			if agentLabel == "" {
				agentLabel = item.Speaker
			}
			if currentSpeaker != "" && item.Speaker != currentSpeaker {
				flush()
			}
			currentSpeaker = item.Speaker
		}

		if item.Content == "" {
			continue
		}
		if buf.Len() > 0 && item.Type != entities.ItemTypePunctuation {
			buf.WriteByte(' ')
		}
		buf.WriteString(item.Content)
	}
	flush()

	return turns
}
