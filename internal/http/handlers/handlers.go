// Handler wiring shared across all endpoint files.
//
// Handlers are transport-thin: they validate input, call application
// services through narrow interfaces, and translate results into HTTP
// responses. All service contracts are context-aware and safe for
// concurrent use.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coachlens/call-insights-backend/internal/domain"
	"github.com/coachlens/call-insights-backend/internal/services"
	"github.com/coachlens/call-insights-backend/internal/utils"
)

// AnalyticsService provides team-level dashboard rollups.
type AnalyticsService interface {
	GetTeamAnalytics(ctx context.Context, teamID string) (*services.TeamAnalytics, error)
	GetCompanyLeaderboards(ctx context.Context, teamID string) (*services.CompanyLeaderboards, error)
}

// MemberService provides per-rep insights.
type MemberService interface {
	GetInsights(ctx context.Context, memberID string) (*services.MemberInsights, error)
}

// ProfileService reads and writes the editable member profile lists.
type ProfileService interface {
	GetProfile(ctx context.Context, memberID string) (*services.Profile, error)
	UpdateProfile(ctx context.Context, memberID string, upd services.ProfileUpdate) (*services.Profile, error)
}

// TeamService manages team lifecycle and membership.
type TeamService interface {
	CreateTeam(ctx context.Context, ownerID, name string) (*domain.Team, error)
	Join(ctx context.Context, teamID, userID string) (*domain.Team, error)
	Leave(ctx context.Context, teamID, userID string) (*domain.Team, error)
}

// NoteService manages coaching notes.
type NoteService interface {
	CreateNote(ctx context.Context, userID, coachID, note string) (*services.NoteView, error)
	ListNotes(ctx context.Context, userID string) ([]services.NoteView, error)
	DeleteNote(ctx context.Context, id, coachID string) error
}

// ChatService drives the assistant panel conversation flow.
type ChatService interface {
	Send(ctx context.Context, userID, sessionKey, prompt string) (*services.ChatReply, error)
	SessionHistory(ctx context.Context, userID, sessionKey string) ([]domain.ConversationMessage, error)
	Clear(userID, sessionKey string)
}

// Handlers groups the HTTP endpoints for analytics, members, teams, notes,
// and the assistant chat.
type Handlers struct {
	analyticsSvc AnalyticsService
	memberSvc    MemberService
	profileSvc   ProfileService
	teamSvc      TeamService
	noteSvc      NoteService
	chatSvc      ChatService
}

// New constructs a Handlers instance bound to the given services.
func New(
	analyticsSvc AnalyticsService,
	memberSvc MemberService,
	profileSvc ProfileService,
	teamSvc TeamService,
	noteSvc NoteService,
	chatSvc ChatService,
) *Handlers {
	return &Handlers{
		analyticsSvc: analyticsSvc,
		memberSvc:    memberSvc,
		profileSvc:   profileSvc,
		teamSvc:      teamSvc,
		noteSvc:      noteSvc,
		chatSvc:      chatSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by
// upstream middleware). If absent, it falls back to the "X-User-ID" header
// (tests use it), and finally to "demo-user".
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// paginate slices items for page/pageSize and builds the metadata block.
func paginate[T any](items []T, page, pageSize int) ([]T, Pagination) {
	total := int64(len(items))
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
