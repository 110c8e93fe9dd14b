package entities

// TranscriptEvent is one result emitted by the streaming transcription service.
// Partial events may be superseded; only final events are durable.
type TranscriptEvent struct {
	Text    string
	IsFinal bool
}

// ItemType distinguishes recognized words from punctuation in batch output
type ItemType string

const (
	ItemTypeWord        ItemType = "word"
	ItemTypePunctuation ItemType = "punctuation"
)

// TranscriptItem is one recognized token of a completed batch transcription
type TranscriptItem struct {
	Type    ItemType `json:"type"`
	Content string   `json:"content"`
	Speaker string   `json:"speaker,omitempty"`
}

// Speaker is the conversational role attributed to a speaker label
type Speaker string

const (
	SpeakerAgent    Speaker = "Agent"
	SpeakerCustomer Speaker = "Customer"
)

// SpeakerTurn groups consecutive items sharing one speaker label
type SpeakerTurn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}
