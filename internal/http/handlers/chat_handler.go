// Assistant chat HTTP handlers.
//
// This file exposes the inline assistant panel endpoints. The {id} path
// segment is the client-chosen session key, not a conversation row id: the
// backing conversation is created lazily on the first message and abandoned
// (never deleted) when the panel is cleared.
//
//   - POST   /conversations/{id}/messages  (send a prompt, get a reply)
//   - GET    /conversations/{id}/messages  (persisted history, by sequence)
//   - DELETE /conversations/{id}           (clear the panel)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// SendMessageRequest is the JSON payload for sending a prompt.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required" example:"How did my discovery calls go this week?"`
}

// SessionHistoryResponse wraps the persisted messages of one session.
type SessionHistoryResponse struct {
	Messages []domain.ConversationMessage `json:"messages"`
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a message to the assistant
// @Description Appends the prompt to the session's conversation (creating it on first use) and returns the assistant's reply. Message persistence is asynchronous.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Session key"
// @Param       body       body    handlers.SendMessageRequest  true  "Prompt payload"
//
// @Success     200  {object}  services.ChatReply
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations/{id}/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	reply, err := h.chatSvc.Send(c.Request.Context(), userID(c), c.Param("id"), req.Message)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, reply)
}

// GetMessages godoc
// @ID          getMessages
// @Summary     Session message history
// @Description Returns the persisted messages of the session's conversation, ordered by sequence number. Empty before the first message.
// @Tags        Chat
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Session key"
//
// @Success     200  {object}  handlers.SessionHistoryResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations/{id}/messages [get]
func (h *Handlers) GetMessages(c *gin.Context) {
	msgs, err := h.chatSvc.SessionHistory(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if msgs == nil {
		msgs = []domain.ConversationMessage{}
	}
	ok(c, http.StatusOK, SessionHistoryResponse{Messages: msgs})
}

// ClearConversation godoc
// @ID          clearConversation
// @Summary     Clear the assistant panel
// @Description Resets the session; the previous conversation row is abandoned, not deleted.
// @Tags        Chat
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Session key"
//
// @Success     204  {string}  string  "No Content"
// @Router      /conversations/{id} [delete]
func (h *Handlers) ClearConversation(c *gin.Context) {
	h.chatSvc.Clear(userID(c), c.Param("id"))
	noContent(c)
}
