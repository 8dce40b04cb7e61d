package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/coachlens/call-insights-backend/internal/domain"
	"github.com/coachlens/call-insights-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

const testTeamID = "141add05-4415-4938-b5a1-17e0d3171aff"

// Stub services. Each embeds the errors/values the individual test wants.

type stubAnalytics struct {
	analytics *services.TeamAnalytics
	companies *services.CompanyLeaderboards
	err       error
}

func (s *stubAnalytics) GetTeamAnalytics(context.Context, string) (*services.TeamAnalytics, error) {
	return s.analytics, s.err
}

func (s *stubAnalytics) GetCompanyLeaderboards(context.Context, string) (*services.CompanyLeaderboards, error) {
	return s.companies, s.err
}

type stubMembers struct {
	insights *services.MemberInsights
	err      error
}

func (s *stubMembers) GetInsights(context.Context, string) (*services.MemberInsights, error) {
	return s.insights, s.err
}

type stubProfiles struct {
	profile *services.Profile
	upd     services.ProfileUpdate
	err     error
}

func (s *stubProfiles) GetProfile(context.Context, string) (*services.Profile, error) {
	return s.profile, s.err
}

func (s *stubProfiles) UpdateProfile(_ context.Context, _ string, upd services.ProfileUpdate) (*services.Profile, error) {
	s.upd = upd
	return s.profile, s.err
}

type stubTeams struct {
	team       *domain.Team
	err        error
	lastUserID string
}

func (s *stubTeams) CreateTeam(_ context.Context, ownerID, _ string) (*domain.Team, error) {
	s.lastUserID = ownerID
	return s.team, s.err
}

func (s *stubTeams) Join(_ context.Context, _, userID string) (*domain.Team, error) {
	s.lastUserID = userID
	return s.team, s.err
}

func (s *stubTeams) Leave(_ context.Context, _, userID string) (*domain.Team, error) {
	s.lastUserID = userID
	return s.team, s.err
}

type stubNotes struct {
	note  *services.NoteView
	notes []services.NoteView
	err   error
}

func (s *stubNotes) CreateNote(context.Context, string, string, string) (*services.NoteView, error) {
	return s.note, s.err
}

func (s *stubNotes) ListNotes(context.Context, string) ([]services.NoteView, error) {
	return s.notes, s.err
}

func (s *stubNotes) DeleteNote(context.Context, string, string) error { return s.err }

type stubChat struct {
	reply   *services.ChatReply
	history []domain.ConversationMessage
	err     error
	cleared string
}

func (s *stubChat) Send(context.Context, string, string, string) (*services.ChatReply, error) {
	return s.reply, s.err
}

func (s *stubChat) SessionHistory(context.Context, string, string) ([]domain.ConversationMessage, error) {
	return s.history, s.err
}

func (s *stubChat) Clear(_, sessionKey string) { s.cleared = sessionKey }

type stubs struct {
	analytics *stubAnalytics
	members   *stubMembers
	profiles  *stubProfiles
	teams     *stubTeams
	notes     *stubNotes
	chat      *stubChat
}

func newStubRouter() (*gin.Engine, *stubs) {
	st := &stubs{
		analytics: &stubAnalytics{},
		members:   &stubMembers{},
		profiles:  &stubProfiles{},
		teams:     &stubTeams{},
		notes:     &stubNotes{},
		chat:      &stubChat{},
	}
	h := New(st.analytics, st.members, st.profiles, st.teams, st.notes, st.chat)

	r := gin.New()
	r.GET("/teams/:id/analytics", h.GetTeamAnalytics)
	r.GET("/teams/:id/companies", h.GetTeamCompanies)
	r.POST("/teams", h.CreateTeam)
	r.POST("/teams/:id/join", h.JoinTeam)
	r.POST("/teams/:id/leave", h.LeaveTeam)
	r.GET("/members/:id/insights", h.GetMemberInsights)
	r.GET("/members/:id/profile", h.GetMemberProfile)
	r.PUT("/members/:id/profile", h.UpdateMemberProfile)
	r.POST("/members/:id/notes", h.CreateNote)
	r.GET("/members/:id/notes", h.ListNotes)
	r.DELETE("/members/:id/notes/:noteID", h.DeleteNote)
	r.POST("/conversations/:id/messages", h.PostMessage)
	r.GET("/conversations/:id/messages", h.GetMessages)
	r.DELETE("/conversations/:id", h.ClearConversation)
	return r, st
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserID_FallbackChain(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if got := userID(c); got != "demo-user" {
		t.Fatalf("userID = %q, want demo-user", got)
	}
	c.Request.Header.Set("X-User-ID", "hdr-user")
	if got := userID(c); got != "hdr-user" {
		t.Fatalf("userID = %q, want hdr-user", got)
	}
	c.Set("userID", "ctx-user")
	if got := userID(c); got != "ctx-user" {
		t.Fatalf("userID = %q, want ctx-user", got)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, pg := paginate(items, 2, 2)
	if len(page) != 2 || page[0] != 3 {
		t.Fatalf("page = %v", page)
	}
	if pg.Total != 5 || pg.TotalPages != 3 || !pg.HasNext {
		t.Fatalf("pagination = %+v", pg)
	}

	// Out-of-range page yields an empty slice, not a panic.
	page, pg = paginate(items, 9, 2)
	if len(page) != 0 || pg.HasNext {
		t.Fatalf("out-of-range page = %v, %+v", page, pg)
	}
}
