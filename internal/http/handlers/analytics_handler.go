// Team analytics HTTP handlers.
//
// This file exposes the dashboard rollup endpoints:
//   - GET /teams/{id}/analytics   (full dashboard snapshot)
//   - GET /teams/{id}/companies   (prospect-company leaderboards)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetTeamAnalytics godoc
// @ID          getTeamAnalytics
// @Summary     Team dashboard analytics
// @Description Returns the team's stats, daily score trend, top performers, category performance, score distribution, and rep comparison.
// @Tags        Analytics
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Team ID (UUID)"          format(uuid)
//
// @Success     200  {object}  services.TeamAnalytics
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Team not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /teams/{id}/analytics [get]
func (h *Handlers) GetTeamAnalytics(c *gin.Context) {
	teamID := c.Param("id")
	if _, err := uuid.Parse(teamID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "team id must be a UUID")
		return
	}

	out, err := h.analyticsSvc.GetTeamAnalytics(c.Request.Context(), teamID)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetTeamCompanies godoc
// @ID          getTeamCompanies
// @Summary     Company leaderboards
// @Description Returns the top companies by call volume and by deal risk alerts for the team's calls.
// @Tags        Analytics
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Team ID (UUID)"          format(uuid)
//
// @Success     200  {object}  services.CompanyLeaderboards
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Team not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /teams/{id}/companies [get]
func (h *Handlers) GetTeamCompanies(c *gin.Context) {
	teamID := c.Param("id")
	if _, err := uuid.Parse(teamID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "team id must be a UUID")
		return
	}

	out, err := h.analyticsSvc.GetCompanyLeaderboards(c.Request.Context(), teamID)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}
