package services

import (
	"context"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coachlens/call-insights-backend/internal/domain"
	"github.com/coachlens/call-insights-backend/internal/repo"
)

// Profile is the editable slice of a member's record: the three skill
// lists. Reads come back canonical regardless of the stored shape, and
// writes accept any historical shape (JSON array, JSON-encoded string,
// comma-separated string) and persist the canonical form.
type Profile struct {
	MemberID          string            `json:"member_id"`
	Name              string            `json:"name"`
	KeyStrengths      domain.StringList `json:"key_strengths"`
	FocusAreas        domain.StringList `json:"focus_areas"`
	AIRecommendations domain.StringList `json:"ai_recommendations"`
}

// ProfileUpdate carries raw, possibly messy list values from the client. A
// nil field means "leave unchanged".
type ProfileUpdate struct {
	KeyStrengths      any `json:"key_strengths"`
	FocusAreas        any `json:"focus_areas"`
	AIRecommendations any `json:"ai_recommendations"`
}

// ProfileService reads and updates member profiles, normalizing list
// fields at the write boundary.
type ProfileService struct {
	DB *gorm.DB
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// GetProfile returns the member's profile lists in canonical form.
func (s *ProfileService) GetProfile(ctx context.Context, memberID string) (*Profile, error) {
	member, err := repo.GetMember(ctx, s.DB, memberID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return profileOf(member), nil
}

// UpdateProfile normalizes the submitted list values and persists them.
// Fields left nil in the update keep their stored value. Returns the
// post-update profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, memberID string, upd ProfileUpdate) (*Profile, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "UpdateProfile",
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

	strengths := member.KeyStrengths
	if upd.KeyStrengths != nil {
		strengths = domain.NormalizeList(upd.KeyStrengths)
	}
	focus := member.FocusAreas
	if upd.FocusAreas != nil {
		focus = domain.NormalizeList(upd.FocusAreas)
	}
	recs := member.AIRecommendations
	if upd.AIRecommendations != nil {
		recs = domain.NormalizeList(upd.AIRecommendations)
	}

	if err := repo.UpdateMemberProfile(ctx, s.DB, memberID, strengths, focus, recs); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	member.KeyStrengths = strengths
	member.FocusAreas = focus
	member.AIRecommendations = recs
	return profileOf(member), nil
}

func profileOf(m *domain.TeamMember) *Profile {
	return &Profile{
		MemberID:          m.ID,
		Name:              m.Name,
		KeyStrengths:      m.KeyStrengths,
		FocusAreas:        m.FocusAreas,
		AIRecommendations: m.AIRecommendations,
	}
}
