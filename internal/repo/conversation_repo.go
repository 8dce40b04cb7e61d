// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for assistant
// conversations and their messages.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// CreateConversation inserts a new conversation row for userID with a zero
// message count.
func CreateConversation(ctx context.Context, db *gorm.DB, userID string, metadata domain.JSONMap) (*domain.Conversation, error) {
	c := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetConversation fetches a conversation by id and owner, or ErrNotFound.
func GetConversation(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateMessage inserts one conversation message and bumps the parent's
// denormalized message_count to the message's sequence number, in a single
// transaction. The caller assigns the sequence number; the unique index on
// (conversation_id, sequence_number) rejects reuse.
func CreateMessage(ctx context.Context, db *gorm.DB, conversationID, role, content string, seq int, metadata domain.JSONMap) (*domain.ConversationMessage, error) {
	m := &domain.ConversationMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		SequenceNumber: seq,
		Metadata:       metadata,
		CreatedAt:      time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", conversationID).
			Update("message_count", seq).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns a conversation's messages ordered by sequence number.
func ListMessages(ctx context.Context, db *gorm.DB, conversationID string) ([]domain.ConversationMessage, error) {
	var out []domain.ConversationMessage
	err := db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence_number asc").
		Find(&out).Error
	return out, err
}

// CountMessages returns the number of persisted messages in a conversation.
// This can lag the denormalized message_count when fire-and-forget writes
// were lost; callers that care about truth use this count.
func CountMessages(ctx context.Context, db *gorm.DB, conversationID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ConversationMessage{}).
		Where("conversation_id = ?", conversationID).
		Count(&total).Error
	return total, err
}
