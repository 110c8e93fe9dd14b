package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// PutItemAPI is the subset of the DynamoDB client used for conversations
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoConversationRepository stores one item per session keyed by ConversationId
type DynamoConversationRepository struct {
	api   PutItemAPI
	table string
}

// NewDynamoConversationRepository creates a DynamoDB conversation repository
func NewDynamoConversationRepository(api PutItemAPI, table string) *DynamoConversationRepository {
	return &DynamoConversationRepository{api: api, table: table}
}

// Put writes the record unless an item with the same id already exists
func (r *DynamoConversationRepository) Put(ctx context.Context, sessionID string, record *entities.ConversationRecord) error {
	if record == nil {
		return errors.New("conversation record cannot be nil")
	}
	record.ConversationID = sessionID

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ConversationId)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return entities.ErrConversationExists
		}
		return fmt.Errorf("failed to put conversation %s: %w", sessionID, err)
	}
	return nil
}
