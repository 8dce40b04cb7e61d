package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

func TestListCallsForUsers(t *testing.T) {
	db := newTestDB(t, &domain.CallRecord{})
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	score := 70.0
	for i, user := range []string{"u1", "u2", "u3"} {
		c := domain.CallRecord{
			ID:             fmt.Sprintf("c%d", i),
			UserID:         user,
			AIOverallScore: &score,
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := ListCallsForUsers(context.Background(), db, []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("ListCallsForUsers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].UserID != "u2" || got[1].UserID != "u1" {
		t.Fatalf("order wrong: %v, %v", got[0].UserID, got[1].UserID)
	}

	empty, err := ListCallsForUsers(context.Background(), db, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty ids: got (%v, %v)", empty, err)
	}
}

func TestListCallsForUsers_JSONColumnsRoundTrip(t *testing.T) {
	db := newTestDB(t, &domain.CallRecord{})
	score := 81.0
	c := domain.CallRecord{
		ID:             "c1",
		UserID:         "u1",
		AIOverallScore: &score,
		AICategoryScores: domain.CategoryScores{
			"discovery": 81,
		},
		AIDealRiskAlerts: domain.StringList{"champion left"},
		AIImprovementAreas: domain.ImprovementList{
			{CategorySkill: "closing", DoThisInstead: "ask for the order"},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := ListCallsForUsers(context.Background(), db, []string{"u1"})
	if err != nil || len(got) != 1 {
		t.Fatalf("fetch: (%v, %v)", got, err)
	}
	if got[0].AICategoryScores["discovery"] != 81 {
		t.Fatalf("category scores lost: %v", got[0].AICategoryScores)
	}
	if len(got[0].AIDealRiskAlerts) != 1 || got[0].AIDealRiskAlerts[0] != "champion left" {
		t.Fatalf("risk alerts lost: %v", got[0].AIDealRiskAlerts)
	}
	if len(got[0].AIImprovementAreas) != 1 || got[0].AIImprovementAreas[0].CategorySkill != "closing" {
		t.Fatalf("improvement areas lost: %v", got[0].AIImprovementAreas)
	}
}

func TestListRecentCallsForUser_Limit(t *testing.T) {
	db := newTestDB(t, &domain.CallRecord{})
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		c := domain.CallRecord{
			ID:        fmt.Sprintf("c%d", i),
			UserID:    "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	got, err := ListRecentCallsForUser(context.Background(), db, "u1", 4)
	if err != nil {
		t.Fatalf("ListRecentCallsForUser: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].ID != "c5" {
		t.Fatalf("expected newest first, got %s", got[0].ID)
	}
}

func TestListRecentCalls_AcrossUsers(t *testing.T) {
	db := newTestDB(t, &domain.CallRecord{})
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, user := range []string{"u1", "u2", "u1"} {
		c := domain.CallRecord{
			ID:        fmt.Sprintf("c%d", i),
			UserID:    user,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	got, err := ListRecentCalls(context.Background(), db, 2)
	if err != nil {
		t.Fatalf("ListRecentCalls: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "c2" || got[1].ID != "c1" {
		t.Fatalf("order wrong: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestGetCall_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.CallRecord{})
	_, err := GetCall(context.Background(), db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
