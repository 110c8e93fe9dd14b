package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// RedisConversationRepository stores each record as JSON under prefix+sessionID
type RedisConversationRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisConversationRepository creates a Redis conversation repository
func NewRedisConversationRepository(client *redis.Client, prefix string) *RedisConversationRepository {
	return &RedisConversationRepository{client: client, prefix: prefix}
}

// Put writes the record with SETNX so an existing key is never overwritten
func (r *RedisConversationRepository) Put(ctx context.Context, sessionID string, record *entities.ConversationRecord) error {
	if record == nil {
		return errors.New("conversation record cannot be nil")
	}
	record.ConversationID = sessionID

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(sessionID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store conversation %s: %w", sessionID, err)
	}
	if !ok {
		return entities.ErrConversationExists
	}
	return nil
}

// Get loads a stored record, or entities.ErrObjectNotFound
func (r *RedisConversationRepository) Get(ctx context.Context, sessionID string) (*entities.ConversationRecord, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entities.ErrObjectNotFound
		}
		return nil, err
	}

	var record entities.ConversationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", sessionID, err)
	}
	return &record, nil
}

func (r *RedisConversationRepository) key(sessionID string) string {
	return r.prefix + sessionID
}
