// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for coaching notes.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// CreateNote inserts a coaching note left by coachID on userID.
func CreateNote(ctx context.Context, db *gorm.DB, userID, coachID, note string) (*domain.CoachingNote, error) {
	n := &domain.CoachingNote{
		ID:        uuid.NewString(),
		UserID:    userID,
		CoachID:   coachID,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// ListNotesForUser returns a member's coaching notes, newest first.
func ListNotesForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.CoachingNote, error) {
	var out []domain.CoachingNote
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountNotesForUser returns the number of coaching notes on a member.
func CountNotesForUser(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.CoachingNote{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// DeleteNote removes a note, enforcing that coachID is its author.
// Returns ErrNotFound when the note is missing or owned by someone else.
func DeleteNote(ctx context.Context, db *gorm.DB, id, coachID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND coach_id = ?", id, coachID).
		Delete(&domain.CoachingNote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
