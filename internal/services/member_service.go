package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coachlens/call-insights-backend/internal/domain"
	"github.com/coachlens/call-insights-backend/internal/repo"
	"github.com/coachlens/call-insights-backend/internal/rollup"
)

const defaultRecentCallCap = 50

// CallDigest is the per-call row shown on a member's insights page.
type CallDigest struct {
	ID              string    `json:"id"`
	DurationMinutes int       `json:"duration_minutes"`
	Score           *float64  `json:"score,omitempty"`
	DealSignal      string    `json:"deal_signal,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// MemberInsights is the full insights payload for one rep.
type MemberInsights struct {
	MemberID        string                  `json:"member_id"`
	Name            string                  `json:"name"`
	Stats           rollup.MemberStats      `json:"stats"`
	CategoryRadar   []rollup.RadarPoint     `json:"category_radar"`
	KeyStrengths    []rollup.SkillCount     `json:"key_strengths"`
	FocusAreas      []rollup.SkillCount     `json:"focus_areas"`
	Recommendations []rollup.Recommendation `json:"recommendations"`
	NoteCount       int64                   `json:"note_count"`
	RecentCalls     []CallDigest            `json:"recent_calls"`
}

// MemberService assembles per-rep insights from recent calls and the
// stored profile.
type MemberService struct {
	DB     *gorm.DB
	Labels *rollup.LabelTable

	RecentCallCap int
}

// NewMemberService constructs a MemberService with defaults applied.
func NewMemberService(db *gorm.DB, labels *rollup.LabelTable) *MemberService {
	return &MemberService{DB: db, Labels: labels, RecentCallCap: defaultRecentCallCap}
}

// GetInsights returns the insights payload for memberID. Rollups operate on
// the member's most recent calls, capped at RecentCallCap.
func (s *MemberService) GetInsights(ctx context.Context, memberID string) (*MemberInsights, error) {
	tr := otel.Tracer("services/MemberService")
	ctx, span := tr.Start(ctx, "GetInsights",
		trace.WithAttributes(attribute.String("member.id", memberID)),
	)
	defer span.End()

	member, err := repo.GetMember(ctx, s.DB, memberID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	var (
		calls     []domain.CallRecord
		noteCount int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		calls, err = repo.ListRecentCallsForUser(gctx, s.DB, memberID, s.RecentCallCap)
		return err
	})
	g.Go(func() error {
		var err error
		noteCount, err = repo.CountNotesForUser(gctx, s.DB, memberID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &MemberInsights{
		MemberID:        member.ID,
		Name:            member.Name,
		Stats:           rollup.ComputeMemberStats(calls),
		CategoryRadar:   rollup.ComputeCategoryRadar(calls, s.Labels),
		KeyStrengths:    rollup.DeriveKeyStrengths(member, calls),
		FocusAreas:      rollup.DeriveFocusAreas(member, calls),
		Recommendations: rollup.DeriveRecommendations(member, calls),
		NoteCount:       noteCount,
		RecentCalls:     digests(calls),
	}, nil
}

func digests(calls []domain.CallRecord) []CallDigest {
	out := make([]CallDigest, 0, len(calls))
	for _, c := range calls {
		out = append(out, CallDigest{
			ID:              c.ID,
			DurationMinutes: c.DurationMinutes,
			Score:           c.AIOverallScore,
			DealSignal:      c.DealSignal,
			Summary:         c.AISummary,
			CreatedAt:       c.CreatedAt,
		})
	}
	return out
}
