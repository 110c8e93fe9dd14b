package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

type fakePutItemAPI struct {
	inputs []*dynamodb.PutItemInput
	err    error
}

func (f *fakePutItemAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func testRecord() *entities.ConversationRecord {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return entities.NewConversationRecord("", started, []entities.TranscriptSegment{
		{Text: "hello world", Timestamp: started.Add(2 * time.Second)},
		{Text: "how can I help", Timestamp: started.Add(5 * time.Second)},
	})
}

func TestDynamoConversationRepository_Put(t *testing.T) {
	api := &fakePutItemAPI{}
	repo := NewDynamoConversationRepository(api, "CallConversations")

	if err := repo.Put(context.Background(), "session-1", testRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(api.inputs) != 1 {
		t.Fatalf("expected 1 PutItem call, got %d", len(api.inputs))
	}
	in := api.inputs[0]
	if *in.TableName != "CallConversations" {
		t.Errorf("unexpected table %s", *in.TableName)
	}
	if *in.ConditionExpression != "attribute_not_exists(ConversationId)" {
		t.Errorf("unexpected condition %s", *in.ConditionExpression)
	}

	id, ok := in.Item["ConversationId"].(*types.AttributeValueMemberS)
	if !ok || id.Value != "session-1" {
		t.Errorf("expected ConversationId session-1, got %#v", in.Item["ConversationId"])
	}
	ts, ok := in.Item["Timestamp"].(*types.AttributeValueMemberS)
	if !ok || ts.Value != "2024-05-01T10:00:00Z" {
		t.Errorf("unexpected Timestamp %#v", in.Item["Timestamp"])
	}
	transcript, ok := in.Item["Transcript"].(*types.AttributeValueMemberL)
	if !ok || len(transcript.Value) != 2 {
		t.Fatalf("expected 2 transcript entries, got %#v", in.Item["Transcript"])
	}
	first, ok := transcript.Value[0].(*types.AttributeValueMemberM)
	if !ok {
		t.Fatalf("expected map entry, got %#v", transcript.Value[0])
	}
	if text := first.Value["text"].(*types.AttributeValueMemberS).Value; text != "hello world" {
		t.Errorf("unexpected first segment %q", text)
	}
	if _, ok := in.Item["CreatedAt"]; ok {
		t.Error("CreatedAt must not be stored")
	}
}

func TestDynamoConversationRepository_Exists(t *testing.T) {
	api := &fakePutItemAPI{err: &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}}
	repo := NewDynamoConversationRepository(api, "CallConversations")

	err := repo.Put(context.Background(), "session-1", testRecord())
	if !errors.Is(err, entities.ErrConversationExists) {
		t.Fatalf("expected ErrConversationExists, got %v", err)
	}
}

func TestDynamoConversationRepository_Failure(t *testing.T) {
	api := &fakePutItemAPI{err: errors.New("ResourceNotFoundException")}
	repo := NewDynamoConversationRepository(api, "missing")

	err := repo.Put(context.Background(), "session-1", testRecord())
	if err == nil || errors.Is(err, entities.ErrConversationExists) {
		t.Fatalf("expected a plain failure, got %v", err)
	}
}

func strPtr(s string) *string { return &s }
