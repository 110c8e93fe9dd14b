package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	"github.com/johnquangdev/call-insights/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-insights/pkg/config"
)

// ConversationBackends carries the clients a conversation store may need.
// Only the one matching the configured store must be set.
type ConversationBackends struct {
	AWS   *aws.Config
	Redis *redis.Client
	DB    *gorm.DB
}

// NewConversationRepository builds the configured conversation store and
// wraps it with persistence metrics
func NewConversationRepository(cfg *config.ConversationConfig, backends ConversationBackends, m *metrics.Metrics) (repositories.ConversationRepository, error) {
	var repo repositories.ConversationRepository

	switch cfg.Store {
	case config.StoreDynamoDB:
		if backends.AWS == nil {
			return nil, fmt.Errorf("dynamodb conversation store requires AWS config")
		}
		repo = NewDynamoConversationRepository(dynamodb.NewFromConfig(*backends.AWS), cfg.DynamoTable)
	case config.StoreRedis:
		if backends.Redis == nil {
			return nil, fmt.Errorf("redis conversation store requires a redis client")
		}
		repo = NewRedisConversationRepository(backends.Redis, cfg.RedisKeyPrefix)
	case config.StorePostgres:
		if backends.DB == nil {
			return nil, fmt.Errorf("postgres conversation store requires a database")
		}
		repo = NewPostgresConversationRepository(backends.DB)
	default:
		return nil, fmt.Errorf("unsupported conversation store %q", cfg.Store)
	}

	if m == nil {
		return repo, nil
	}
	return &meteredConversationRepository{inner: repo, store: cfg.Store, metrics: m}, nil
}

type meteredConversationRepository struct {
	inner   repositories.ConversationRepository
	store   string
	metrics *metrics.Metrics
}

func (r *meteredConversationRepository) Put(ctx context.Context, sessionID string, record *entities.ConversationRecord) error {
	err := r.inner.Put(ctx, sessionID, record)
	r.metrics.RecordConversationSave(r.store, err)
	return err
}
