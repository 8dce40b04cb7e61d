// Member insights and profile HTTP handlers.
//
// This file exposes the per-rep endpoints:
//   - GET /members/{id}/insights  (stats, radar, strengths, recommendations; weak ETag)
//   - GET /members/{id}/profile   (normalized profile read)
//   - PUT /members/{id}/profile   (profile write, any historical list shape accepted)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coachlens/call-insights-backend/internal/repo"
	"github.com/coachlens/call-insights-backend/internal/services"
)

// UpdateProfileRequest is the JSON payload for profile writes. The three
// list fields accept a JSON array, a JSON-encoded string, or a plain
// comma-separated string; omitted fields keep their stored value.
type UpdateProfileRequest struct {
	KeyStrengths      any `json:"key_strengths"`
	FocusAreas        any `json:"focus_areas"`
	AIRecommendations any `json:"ai_recommendations"`
}

// GetMemberInsights godoc
// @ID          getMemberInsights
// @Summary     Member insights
// @Description Returns a rep's rollups over their recent calls. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Members
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       id             path    string  true  "Member ID"
//
// @Success     200  {object} services.MemberInsights
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Member not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /members/{id}/insights [get]
func (h *Handlers) GetMemberInsights(c *gin.Context) {
	ctx := c.Request.Context()
	memberID := c.Param("id")

	// ETag pre-check (best effort): fingerprint the member's call set and
	// note count so any new call or note invalidates the tag.
	var db *gorm.DB
	if svc, ok := h.memberSvc.(*services.MemberService); ok {
		db = svc.DB
	}
	if db != nil {
		callCount, callTS, cErr := repo.CallsStats(ctx, db, []string{memberID})
		noteCount, _, nErr := repo.NotesStats(ctx, db, memberID)
		if cErr == nil && nErr == nil {
			var ts int64
			if callTS != nil {
				ts = callTS.Unix()
			}
			etag := fmt.Sprintf(`W/"insights:%s:%d:%d:%d"`, memberID, callCount, ts, noteCount)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	out, err := h.memberSvc.GetInsights(ctx, memberID)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetMemberProfile godoc
// @ID          getMemberProfile
// @Summary     Read member profile
// @Description Returns the member's skill lists in canonical form regardless of the stored shape.
// @Tags        Members
// @Produce     json
//
// @Param       id  path  string  true  "Member ID"
//
// @Success     200  {object} services.Profile
// @Failure     404  {object} handlers.ErrorResponse "Member not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /members/{id}/profile [get]
func (h *Handlers) GetMemberProfile(c *gin.Context) {
	out, err := h.profileSvc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// UpdateMemberProfile godoc
// @ID          updateMemberProfile
// @Summary     Update member profile
// @Description Normalizes and persists the submitted skill lists. Omitted fields are left unchanged.
// @Tags        Members
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Member ID"
// @Param       body  body  handlers.UpdateProfileRequest  true  "Profile payload"
//
// @Success     200  {object} services.Profile
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Member not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /members/{id}/profile [put]
func (h *Handlers) UpdateMemberProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	out, err := h.profileSvc.UpdateProfile(c.Request.Context(), c.Param("id"), services.ProfileUpdate{
		KeyStrengths:      req.KeyStrengths,
		FocusAreas:        req.FocusAreas,
		AIRecommendations: req.AIRecommendations,
	})
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}
