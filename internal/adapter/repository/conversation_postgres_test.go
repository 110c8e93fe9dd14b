package repository

import (
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestInsertConversation_OnConflictDoNothing(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres dbname=call_insights sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("failed to open dry-run db: %v", err)
	}

	record := testRecord()
	record.ConversationID = "session-1"

	stmt := insertConversation(db, record).Statement
	sql := stmt.SQL.String()

	if !strings.Contains(sql, `INSERT INTO "call_conversations"`) {
		t.Errorf("expected insert into call_conversations, got %s", sql)
	}
	if !strings.Contains(sql, "ON CONFLICT DO NOTHING") {
		t.Errorf("expected ON CONFLICT DO NOTHING, got %s", sql)
	}
	if !strings.Contains(sql, `"started_at"`) || !strings.Contains(sql, `"transcript"`) {
		t.Errorf("expected started_at and transcript columns, got %s", sql)
	}
}
