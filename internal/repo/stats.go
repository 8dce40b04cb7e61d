// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// NotesStats returns aggregate metadata for a member's coaching notes: the
// total number of rows and the maximum UpdatedAt timestamp among them.
// When the member has no notes the count is 0 and maxUpdatedAt is nil.
func NotesStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.CoachingNote{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// CallsStats returns aggregate metadata for the calls owned by userIDs:
// row count and the maximum UpdatedAt. The analytics service folds both
// into its cache key so a re-analyzed call invalidates the snapshot.
func CallsStats(ctx context.Context, db *gorm.DB, userIDs []string) (count int64, maxUpdatedAt *time.Time, err error) {
	if len(userIDs) == 0 {
		return 0, nil, nil
	}
	q := db.WithContext(ctx).Model(&domain.CallRecord{}).Where("user_id IN ?", userIDs)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
