package transcription

// SpeakerTurnResponse is one attributed turn of a transcribed call
type SpeakerTurnResponse struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// TranscribeResponse carries the speaker turns of a recording
type TranscribeResponse struct {
	Message string                `json:"message"`
	Results []SpeakerTurnResponse `json:"results"`
}
