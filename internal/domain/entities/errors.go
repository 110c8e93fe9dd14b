package entities

import "errors"

// Domain errors
var (
	// Storage errors
	ErrObjectNotFound      = errors.New("object not found")
	ErrStorageAccessDenied = errors.New("storage access denied")
	ErrInvalidObjectKey    = errors.New("invalid object key")

	// Conversation errors
	ErrConversationExists = errors.New("conversation already recorded")

	// Transcription errors
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrEmptyAudioURL       = errors.New("audio URL is required")

	// ErrMalformedEvent marks a remote payload that could not be decoded;
	// the message is skipped and the stream continues
	ErrMalformedEvent = errors.New("malformed transcript event")

	// Generation errors
	ErrNoCandidates = errors.New("generation returned no candidates")
)
