package relay

// Message types sent to the client
const (
	MessageTypeTranscript = "transcript"
	MessageTypeAssistance = "assistance"
)

// TranscriptMessage forwards a partial or final transcript
type TranscriptMessage struct {
	Type string         `json:"type"`
	Data TranscriptData `json:"data"`
}

type TranscriptData struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

// AssistanceMessage carries a generated answer for a final transcript
type AssistanceMessage struct {
	Type string         `json:"type"`
	Data AssistanceData `json:"data"`
}

type AssistanceData struct {
	Suggestion string `json:"suggestion"`
}

// ErrorMessage is the terminal best-effort error frame
type ErrorMessage struct {
	Error string `json:"error"`
}

func newTranscriptMessage(text string, isFinal bool) TranscriptMessage {
	return TranscriptMessage{
		Type: MessageTypeTranscript,
		Data: TranscriptData{Text: text, IsFinal: isFinal},
	}
}

func newAssistanceMessage(suggestion string) AssistanceMessage {
	return AssistanceMessage{
		Type: MessageTypeAssistance,
		Data: AssistanceData{Suggestion: suggestion},
	}
}
