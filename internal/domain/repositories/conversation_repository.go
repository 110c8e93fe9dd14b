package repositories

import (
	"context"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// ConversationRepository persists one record per streaming session.
// Records are append-only; a second Put for the same id must not overwrite.
type ConversationRepository interface {
	Put(ctx context.Context, sessionID string, record *entities.ConversationRecord) error
}
