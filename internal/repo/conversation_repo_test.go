package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

func TestConversation_CreateAndGet(t *testing.T) {
	db := newTestDB(t, &domain.Conversation{}, &domain.ConversationMessage{})
	ctx := context.Background()

	conv, err := CreateConversation(ctx, db, "u1", domain.JSONMap{"source": "inline_panel"})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if conv.MessageCount != 0 {
		t.Fatalf("MessageCount = %d, want 0", conv.MessageCount)
	}

	got, err := GetConversation(ctx, db, conv.ID, "u1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.Metadata["source"] != "inline_panel" {
		t.Fatalf("metadata = %v", got.Metadata)
	}

	// Ownership is enforced.
	if _, err := GetConversation(ctx, db, conv.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateMessage_BumpsMessageCount(t *testing.T) {
	db := newTestDB(t, &domain.Conversation{}, &domain.ConversationMessage{})
	ctx := context.Background()

	conv, err := CreateConversation(ctx, db, "u1", nil)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	if _, err := CreateMessage(ctx, db, conv.ID, "user", "hello", 1, nil); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := CreateMessage(ctx, db, conv.ID, "assistant", "hi", 2, nil); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	got, err := GetConversation(ctx, db, conv.ID, "u1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.MessageCount != 2 {
		t.Fatalf("MessageCount = %d, want 2", got.MessageCount)
	}

	msgs, err := ListMessages(ctx, db, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].SequenceNumber != 1 || msgs[1].SequenceNumber != 2 {
		t.Fatalf("messages = %v", msgs)
	}

	total, err := CountMessages(ctx, db, conv.ID)
	if err != nil || total != 2 {
		t.Fatalf("CountMessages = (%d, %v)", total, err)
	}
}

// The unique index on (conversation_id, sequence_number) must reject reuse
// and roll the transaction back without touching message_count.
func TestCreateMessage_SequenceReuseRejected(t *testing.T) {
	db := newTestDB(t, &domain.Conversation{}, &domain.ConversationMessage{})
	ctx := context.Background()

	conv, err := CreateConversation(ctx, db, "u1", nil)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if _, err := CreateMessage(ctx, db, conv.ID, "user", "one", 1, nil); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := CreateMessage(ctx, db, conv.ID, "user", "dup", 1, nil); err == nil {
		t.Fatal("expected unique violation for reused sequence number")
	}

	got, _ := GetConversation(ctx, db, conv.ID, "u1")
	if got.MessageCount != 1 {
		t.Fatalf("MessageCount = %d, want 1 after rollback", got.MessageCount)
	}
}
