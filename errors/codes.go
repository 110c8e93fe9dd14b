package errors

import "fmt"

// ErrorCode identifies an application error in API responses
type ErrorCode int32

const (
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002

	ErrorCode_INVALID_PAYLOAD   ErrorCode = 2000
	ErrorCode_MISSING_FILE      ErrorCode = 2001
	ErrorCode_MISSING_AUDIO_KEY ErrorCode = 2002
	ErrorCode_MISSING_MESSAGE   ErrorCode = 2003

	ErrorCode_DOCUMENT_NOT_FOUND ErrorCode = 3000

	ErrorCode_TRANSCRIPTION_FAILED ErrorCode = 4000

	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 5000
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 5001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_MISSING_FILE:                    "MISSING_FILE",
	ErrorCode_MISSING_AUDIO_KEY:               "MISSING_AUDIO_KEY",
	ErrorCode_MISSING_MESSAGE:                 "MISSING_MESSAGE",
	ErrorCode_DOCUMENT_NOT_FOUND:              "DOCUMENT_NOT_FOUND",
	ErrorCode_TRANSCRIPTION_FAILED:            "TRANSCRIPTION_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int32(c))
}
