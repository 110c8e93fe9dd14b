package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// PostgresConversationRepository stores records in call_conversations
type PostgresConversationRepository struct {
	db *gorm.DB
}

// NewPostgresConversationRepository creates a Postgres conversation repository
func NewPostgresConversationRepository(db *gorm.DB) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

// Put inserts the record; a conflicting id is left untouched
func (r *PostgresConversationRepository) Put(ctx context.Context, sessionID string, record *entities.ConversationRecord) error {
	if record == nil {
		return errors.New("conversation record cannot be nil")
	}
	record.ConversationID = sessionID

	result := insertConversation(r.db.WithContext(ctx), record)
	if result.Error != nil {
		return fmt.Errorf("failed to insert conversation %s: %w", sessionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrConversationExists
	}
	return nil
}

func insertConversation(db *gorm.DB, record *entities.ConversationRecord) *gorm.DB {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
}
