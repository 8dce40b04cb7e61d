// Package handlers defines the HTTP-layer error codes used across all API
// endpoints and the mapping from service sentinel errors onto them.
//
// Codes are lowercase snake_case and stable: clients branch on them for
// programmatic error handling, so renaming one is a breaking change.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coachlens/call-insights-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeAnswerFailed     = "answer_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failFromService translates a service error into the envelope, mapping the
// known sentinels to precise statuses and everything else to a 500.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "team not found")
	case errors.Is(err, services.ErrMemberNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "member not found")
	case errors.Is(err, services.ErrNoteNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "note not found")
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
	case errors.Is(err, services.ErrEmptyNote),
		errors.Is(err, services.ErrNoteTooLong),
		errors.Is(err, services.ErrEmptyTeamName),
		errors.Is(err, services.ErrEmptyPrompt),
		errors.Is(err, services.ErrPromptTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrNotMember):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
