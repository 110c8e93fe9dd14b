package transcription

import (
	"reflect"
	"testing"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

func word(speaker, content string) entities.TranscriptItem {
	return entities.TranscriptItem{Type: entities.ItemTypeWord, Content: content, Speaker: speaker}
}

func punct(content string) entities.TranscriptItem {
	return entities.TranscriptItem{Type: entities.ItemTypePunctuation, Content: content}
}

func TestSegmentSpeakers(t *testing.T) {
	tests := []struct {
		name  string
		items []entities.TranscriptItem
		want  []entities.SpeakerTurn
	}{
		{
			name:  "two speakers",
			items: []entities.TranscriptItem{word("spk1", "hi"), word("spk1", "there"), word("spk2", "hello")},
			want: []entities.SpeakerTurn{
				{Speaker: entities.SpeakerAgent, Text: "hi there"},
				{Speaker: entities.SpeakerCustomer, Text: "hello"},
			},
		},
		{
			name:  "empty input",
			items: nil,
			want:  nil,
		},
		{
			name: "punctuation attaches to previous word",
			items: []entities.TranscriptItem{
				word("spk_0", "Hello"), punct(","), word("spk_0", "how"), word("spk_0", "are"), word("spk_0", "you"), punct("?"),
				word("spk_1", "Fine"), punct("."),
			},
			want: []entities.SpeakerTurn{
				{Speaker: entities.SpeakerAgent, Text: "Hello, how are you?"},
				{Speaker: entities.SpeakerCustomer, Text: "Fine."},
			},
		},
		{
			name: "speaker returns",
			items: []entities.TranscriptItem{
				word("B", "one"), word("A", "two"), word("B", "three"), word("C", "four"),
			},
			want: []entities.SpeakerTurn{
				{Speaker: entities.SpeakerAgent, Text: "one"},
				{Speaker: entities.SpeakerCustomer, Text: "two"},
				{Speaker: entities.SpeakerAgent, Text: "three"},
				{Speaker: entities.SpeakerCustomer, Text: "four"},
			},
		},
		{
			name:  "leading unlabeled items join the first speaker",
			items: []entities.TranscriptItem{word("", "um"), word("spk1", "hi"), word("spk2", "hello")},
			want: []entities.SpeakerTurn{
				{Speaker: entities.SpeakerAgent, Text: "um hi"},
				{Speaker: entities.SpeakerCustomer, Text: "hello"},
			},
		},
		{
			name:  "no labels",
			items: []entities.TranscriptItem{word("", "just"), word("", "words")},
			want:  []entities.SpeakerTurn{{Speaker: entities.SpeakerAgent, Text: "just words"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SegmentSpeakers(tt.items)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
