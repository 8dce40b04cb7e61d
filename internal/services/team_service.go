package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coachlens/call-insights-backend/internal/domain"
	"github.com/coachlens/call-insights-backend/internal/repo"
)

// TeamService manages team lifecycle and membership. Membership is stored
// as a list column on the team row; mutations are read-compute-write.
type TeamService struct {
	DB *gorm.DB
}

// NewTeamService constructs a TeamService.
func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

// CreateTeam creates a team owned by ownerID; the owner is the first
// member.
func (s *TeamService) CreateTeam(ctx context.Context, ownerID, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyTeamName
	}
	return repo.CreateTeam(ctx, s.DB, ownerID, name)
}

// GetTeam fetches a team by id.
func (s *TeamService) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	team, err := repo.GetTeam(ctx, s.DB, id)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// Join adds userID to the team's member list. Joining twice is an error.
func (s *TeamService) Join(ctx context.Context, teamID, userID string) (*domain.Team, error) {
	tr := otel.Tracer("services/TeamService")
	ctx, span := tr.Start(ctx, "Join",
		trace.WithAttributes(
			attribute.String("team.id", teamID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	for _, m := range team.Members {
		if m == userID {
			return nil, ErrAlreadyMember
		}
	}
	members := append(domain.StringList{}, team.Members...)
	members = append(members, userID)
	if err := repo.UpdateTeamMembers(ctx, s.DB, teamID, members); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	team.Members = members
	return team, nil
}

// Leave removes userID from the team's member list.
func (s *TeamService) Leave(ctx context.Context, teamID, userID string) (*domain.Team, error) {
	tr := otel.Tracer("services/TeamService")
	ctx, span := tr.Start(ctx, "Leave",
		trace.WithAttributes(
			attribute.String("team.id", teamID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	members := make(domain.StringList, 0, len(team.Members))
	found := false
	for _, m := range team.Members {
		if m == userID {
			found = true
			continue
		}
		members = append(members, m)
	}
	if !found {
		return nil, ErrNotMember
	}
	if err := repo.UpdateTeamMembers(ctx, s.DB, teamID, members); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	team.Members = members
	return team, nil
}
