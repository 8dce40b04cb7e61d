// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read access to call records.
//
// Call records are created by the external ingestion pipeline; this service
// never writes them, so the repository is read-only. All functions
// are context-aware, accept a *gorm.DB handle, and follow the thin-repository
// approach: no business logic, only query composition.
//
// Error semantics:
//   - Missing rows return gorm.ErrRecordNotFound (exported as ErrNotFound).
//   - Other DB errors propagate raw.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListCallsForUsers returns every call owned by any of userIDs, newest
// first. An empty id list yields an empty slice without touching the DB.
func ListCallsForUsers(ctx context.Context, db *gorm.DB, userIDs []string) ([]domain.CallRecord, error) {
	if len(userIDs) == 0 {
		return []domain.CallRecord{}, nil
	}
	var out []domain.CallRecord
	err := db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListRecentCallsForUser returns the user's most recent calls, newest first,
// capped at limit (<=0 means no cap). Member views fetch a bounded window
// rather than the full history.
func ListRecentCallsForUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.CallRecord, error) {
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.CallRecord
	err := q.Find(&out).Error
	return out, err
}

// ListRecentCalls returns the most recent calls across all users, newest
// first, capped at limit (<=0 means no cap). The retrieval index is seeded
// from this window at startup.
func ListRecentCalls(ctx context.Context, db *gorm.DB, limit int) ([]domain.CallRecord, error) {
	q := db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.CallRecord
	err := q.Find(&out).Error
	return out, err
}

// GetCall fetches a single call record by id, or ErrNotFound.
func GetCall(ctx context.Context, db *gorm.DB, id string) (*domain.CallRecord, error) {
	var c domain.CallRecord
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
