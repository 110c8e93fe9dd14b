package entities

import (
	"time"

	"gorm.io/datatypes"
)

// TranscriptSegment is one finalized utterance of a streaming session
type TranscriptSegment struct {
	Text      string    `json:"text" dynamodbav:"text"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// ConversationRecord is written once per streaming session at teardown and
// never updated afterwards
type ConversationRecord struct {
	ConversationID string                                 `json:"conversation_id" gorm:"column:conversation_id;type:varchar(64);primaryKey" dynamodbav:"ConversationId"`
	Timestamp      time.Time                              `json:"timestamp" gorm:"column:started_at;not null;index" dynamodbav:"Timestamp"`
	Transcript     datatypes.JSONSlice[TranscriptSegment] `json:"transcript" gorm:"column:transcript;type:jsonb;not null" dynamodbav:"Transcript"`
	CreatedAt      time.Time                              `json:"created_at" gorm:"autoCreateTime" dynamodbav:"-"`
}

// TableName specifies the table name for GORM
func (ConversationRecord) TableName() string {
	return "call_conversations"
}

// NewConversationRecord builds the record for a finished session
func NewConversationRecord(sessionID string, startedAt time.Time, segments []TranscriptSegment) *ConversationRecord {
	transcript := make([]TranscriptSegment, len(segments))
	copy(transcript, segments)
	return &ConversationRecord{
		ConversationID: sessionID,
		Timestamp:      startedAt,
		Transcript:     transcript,
	}
}
