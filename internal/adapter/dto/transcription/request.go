package transcription

// TranscribeRequest names a stored recording
type TranscribeRequest struct {
	AudioKey string `json:"audioKey" validate:"required,objectkey"`
}
