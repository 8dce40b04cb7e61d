package httpapi

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coachlens/call-insights-backend/internal/config"
	"github.com/coachlens/call-insights-backend/internal/domain"
	"github.com/coachlens/call-insights-backend/internal/repo"
	"github.com/coachlens/call-insights-backend/internal/rollup"
	"github.com/coachlens/call-insights-backend/internal/search"
	"github.com/coachlens/call-insights-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	cfg := config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
		Threshold:   0.01,
	}
	labels := rollup.NewLabelTable()
	idx := search.NewIndexFromFacts([]string{
		"Discovery went well because the rep asked open questions early.",
	})

	svcs := Services{
		Analytics: services.NewAnalyticsService(db, labels, nil, time.Minute),
		Members:   services.NewMemberService(db, labels),
		Profiles:  services.NewProfileService(db),
		Teams:     services.NewTeamService(db),
		Notes:     services.NewNoteService(db),
		Chat:      services.NewChatService(db, idx, cfg.Threshold),
	}

	r := gin.New()
	RegisterRoutes(r, svcs, cfg)
	return r, db
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = bytes.NewReader(nil)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
}

func TestNoRouteAndNoMethodEnvelopes(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/v1/nope", nil, nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("no route = %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPatch, "/api/v1/teams", nil, nil)
	if w.Code != http.StatusMethodNotAllowed || !strings.Contains(w.Body.String(), `"code":"method_not_allowed"`) {
		t.Fatalf("no method = %d %s", w.Code, w.Body.String())
	}
}

func TestRequestIDAndCORSHeaders(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/health", nil, nil)

	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("ACAO = %q, want *", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing security headers")
	}
}

func TestTeamAnalyticsEndToEnd_Gzipped(t *testing.T) {
	r, db := newTestServer(t)

	member := domain.TeamMember{ID: "m1", Name: "Ana", Email: "ana@example.com"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	score := 88.0
	call := domain.CallRecord{ID: "c1000000-0000-0000-0000-000000000001", UserID: "m1", AIOverallScore: &score, CreatedAt: time.Now().UTC()}
	if err := db.Create(&call).Error; err != nil {
		t.Fatalf("seed call: %v", err)
	}
	team := domain.Team{ID: "a1000000-0000-0000-0000-000000000001", TeamName: "West", OwnerID: "m1", Members: domain.StringList{"m1"}}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}

	w := do(t, r, http.MethodGet, "/api/v1/teams/"+team.ID+"/analytics", nil, map[string]string{
		"Accept-Encoding": "gzip",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", w.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	if !strings.Contains(string(raw), `"avg_score":88`) {
		t.Fatalf("payload = %s", raw)
	}
}

func TestChatFlowEndToEnd(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/v1/conversations/panel/messages", map[string]any{
		"message": "how did discovery go for the rep",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("send status = %d, body = %s", w.Code, w.Body.String())
	}
	var reply services.ChatReply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if reply.ConversationID == "" || reply.Sequence != 2 {
		t.Fatalf("reply = %+v", reply)
	}

	w = do(t, r, http.MethodDelete, "/api/v1/conversations/panel", nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/v1/conversations/panel/messages", nil, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"messages":[]`) {
		t.Fatalf("history after clear = %d %s", w.Code, w.Body.String())
	}
}

func TestProfileRoundTripEndToEnd(t *testing.T) {
	r, db := newTestServer(t)
	member := domain.TeamMember{ID: "m1", Name: "Ana", Email: "ana@example.com"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	w := do(t, r, http.MethodPut, "/api/v1/members/m1/profile", map[string]any{
		"key_strengths": "Discovery, Closing",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/v1/members/m1/profile", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"key_strengths":["Discovery","Closing"]`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestMemberInsightsETag(t *testing.T) {
	r, db := newTestServer(t)
	member := domain.TeamMember{ID: "m1", Name: "Ana", Email: "ana@example.com"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	w := do(t, r, http.MethodGet, "/api/v1/members/m1/insights", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	w = do(t, r, http.MethodGet, "/api/v1/members/m1/insights", nil, map[string]string{
		"If-None-Match": etag,
	})
	if w.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w.Code)
	}
}
