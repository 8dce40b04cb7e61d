// Coaching note HTTP handlers.
//
// This file exposes the coaching feedback endpoints:
//   - POST   /members/{id}/notes           (leave a note on a rep)
//   - GET    /members/{id}/notes           (list, paginated, newest first)
//   - DELETE /members/{id}/notes/{noteID}  (author-only delete)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coachlens/call-insights-backend/internal/repo"
	"github.com/coachlens/call-insights-backend/internal/services"
)

// CreateNoteRequest is the JSON payload for leaving a coaching note.
type CreateNoteRequest struct {
	Note string `json:"note" binding:"required" example:"Slow down during discovery; let the prospect finish."`
}

// ListNotesResponse wraps a page of notes and pagination information.
type ListNotesResponse struct {
	Notes      []services.NoteView `json:"notes"`
	Pagination Pagination          `json:"pagination"`
}

// CreateNote godoc
// @ID          createNote
// @Summary     Leave a coaching note
// @Description Persists a note from the current user (the coach) on the member.
// @Tags        Notes
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(coach123)
// @Param       id         path    string  true  "Member ID"
// @Param       body       body    handlers.CreateNoteRequest  true  "Note payload"
//
// @Success     201  {object}  services.NoteView
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Member not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /members/{id}/notes [post]
func (h *Handlers) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	note, err := h.noteSvc.CreateNote(c.Request.Context(), c.Param("id"), userID(c), req.Note)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, note)
}

// ListNotes godoc
// @ID          listNotes
// @Summary     List coaching notes (paginated)
// @Description Returns the member's notes, newest first, with coach names resolved.
// @Tags        Notes
// @Produce     json
//
// @Param       id             path   string  true  "Member ID"
// @Param       page           query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query  int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header string  false "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ListNotesResponse
// @Header      200  {string}  ETag "Weak ETag for current note set"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /members/{id}/notes [get]
func (h *Handlers) ListNotes(c *gin.Context) {
	ctx := c.Request.Context()
	memberID := c.Param("id")

	// ETag pre-check (best effort): count + max updated-at of the member's
	// notes, so creates and deletes both roll the tag.
	if svc, ok := h.noteSvc.(*services.NoteService); ok && svc.DB != nil {
		if count, maxTS, err := repo.NotesStats(ctx, svc.DB, memberID); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"notes:%s:%d:%d"`, memberID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	notes, err := h.noteSvc.ListNotes(ctx, memberID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	page, pageSize := clampPagination(c)
	items, pg := paginate(notes, page, pageSize)
	ok(c, http.StatusOK, ListNotesResponse{Notes: items, Pagination: pg})
}

// DeleteNote godoc
// @ID          deleteNote
// @Summary     Delete a coaching note
// @Description Deletes a note; only its author may do so.
// @Tags        Notes
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(coach123)
// @Param       id         path    string  true  "Member ID"
// @Param       noteID     path    string  true  "Note ID (UUID)"          format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Note not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /members/{id}/notes/{noteID} [delete]
func (h *Handlers) DeleteNote(c *gin.Context) {
	if err := h.noteSvc.DeleteNote(c.Request.Context(), c.Param("noteID"), userID(c)); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}
