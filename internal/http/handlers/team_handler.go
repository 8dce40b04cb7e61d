// Team lifecycle HTTP handlers.
//
// This file exposes the membership endpoints:
//   - POST /teams             (create; caller becomes owner and first member)
//   - POST /teams/{id}/join   (add caller to member list)
//   - POST /teams/{id}/leave  (remove caller from member list)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateTeamRequest is the JSON payload for creating a team.
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255" example:"West Coast AEs"`
}

// CreateTeam godoc
// @ID          createTeam
// @Summary     Create a team
// @Description Creates a team owned by the current user; the owner is its first member.
// @Tags        Teams
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.CreateTeamRequest  true  "Create team payload"
//
// @Success     201  {object}  domain.Team
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /teams [post]
func (h *Handlers) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required (1-255 chars)")
		return
	}

	team, err := h.teamSvc.CreateTeam(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, team)
}

// JoinTeam godoc
// @ID          joinTeam
// @Summary     Join a team
// @Description Adds the current user to the team's member list.
// @Tags        Teams
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Team ID (UUID)"          format(uuid)
//
// @Success     200  {object}  domain.Team
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Team not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already a member"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /teams/{id}/join [post]
func (h *Handlers) JoinTeam(c *gin.Context) {
	teamID := c.Param("id")
	if _, err := uuid.Parse(teamID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "team id must be a UUID")
		return
	}

	team, err := h.teamSvc.Join(c.Request.Context(), teamID, userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, team)
}

// LeaveTeam godoc
// @ID          leaveTeam
// @Summary     Leave a team
// @Description Removes the current user from the team's member list.
// @Tags        Teams
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Team ID (UUID)"          format(uuid)
//
// @Success     200  {object}  domain.Team
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Team not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Not a member"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /teams/{id}/leave [post]
func (h *Handlers) LeaveTeam(c *gin.Context) {
	teamID := c.Param("id")
	if _, err := uuid.Parse(teamID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "team id must be a UUID")
		return
	}

	team, err := h.teamSvc.Leave(c.Request.Context(), teamID, userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, team)
}
