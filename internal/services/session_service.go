// Package services – ChatService and ChatSession
//
// This file implements the inline assistant panel's conversation
// bookkeeping. Each widget instance maps to one ChatSession, which owns two
// correctness guarantees:
//
//  1. Single creation: at most one conversation row is created per session
//     lifetime, even when several messages are submitted before the first
//     insert resolves. Concurrent EnsureConversation calls coalesce onto a
//     single in-flight insert via singleflight; a failed insert reverts the
//     session to its uncreated state so a later attempt can retry.
//  2. Sequence monotonicity: message sequence numbers start at 1 and are
//     assigned under the session lock before any asynchronous write begins,
//     so two back-to-back messages get distinct, ordered numbers regardless
//     of write completion order.
//
// Message persistence is fire-and-forget: the UI is never blocked
// on a message write, and a lost write is logged but not retried or
// surfaced. Clearing a chat resets the session and abandons (never deletes)
// the previous conversation row.
package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coachlens/call-insights-backend/internal/domain"
	"github.com/coachlens/call-insights-backend/internal/repo"
	"github.com/coachlens/call-insights-backend/internal/search"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"

	// persistTimeout bounds each fire-and-forget message write.
	persistTimeout = 5 * time.Second
)

// fallbackReply is returned when retrieval finds nothing above threshold.
const fallbackReply = "I can’t answer that from your call history yet."

// ChatSession tracks one widget instance's conversation state. Safe for
// concurrent use.
type ChatSession struct {
	db       *gorm.DB
	userID   string
	metadata domain.JSONMap

	mu             sync.Mutex
	conversationID string
	seq            int

	sf singleflight.Group
	wg sync.WaitGroup
}

// EnsureConversation returns the session's conversation id, creating the
// row on first use. All concurrent callers during creation share the single
// in-flight insert and resolve to the same id. On failure the session stays
// uncreated so the next call retries.
func (s *ChatSession) EnsureConversation(ctx context.Context) (string, error) {
	s.mu.Lock()
	if id := s.conversationID; id != "" {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	v, err, _ := s.sf.Do("create", func() (any, error) {
		conv, err := repo.CreateConversation(ctx, s.db, s.userID, s.metadata)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.conversationID = conv.ID
		s.seq = 0
		s.mu.Unlock()
		return conv.ID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// SaveMessage assigns the next sequence number synchronously, then persists
// the message row (and the conversation's denormalized message_count) in the
// background. The returned sequence number is final even if the write later
// fails; failures are logged and not retried.
func (s *ChatSession) SaveMessage(role, content string, metadata domain.JSONMap) (int, error) {
	s.mu.Lock()
	if s.conversationID == "" {
		s.mu.Unlock()
		return 0, ErrConversationNotFound
	}
	s.seq++
	seq := s.seq
	convID := s.conversationID
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if _, err := repo.CreateMessage(ctx, s.db, convID, role, content, seq, metadata); err != nil {
			log.Error().Err(err).
				Str("conversation_id", convID).
				Int("sequence", seq).
				Msg("message persist failed")
		}
	}()
	return seq, nil
}

// Clear resets the session to its uncreated state. The previous
// conversation row, if any, is abandoned, not deleted.
func (s *ChatSession) Clear() {
	s.mu.Lock()
	s.conversationID = ""
	s.seq = 0
	s.mu.Unlock()
}

// ConversationID returns the current conversation id ("" before creation).
func (s *ChatSession) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Wait blocks until all in-flight message writes have completed. Used by
// graceful shutdown and tests; the request path never calls it.
func (s *ChatSession) Wait() { s.wg.Wait() }

// ChatReply is the assistant's answer to one prompt.
type ChatReply struct {
	ConversationID string   `json:"conversation_id"`
	Reply          string   `json:"reply"`
	Score          *float64 `json:"score,omitempty"`
	Sequence       int      `json:"sequence"`
}

// ChatService owns all chat sessions and answers prompts by retrieving over
// the call-narrative index.
type ChatService struct {
	DB        *gorm.DB
	Index     search.Index
	Threshold float64

	MaxPromptRunes int

	mu       sync.Mutex
	sessions map[string]*ChatSession
}

// NewChatService constructs a ChatService with sane defaults.
func NewChatService(db *gorm.DB, idx search.Index, threshold float64) *ChatService {
	return &ChatService{
		DB:             db,
		Index:          idx,
		Threshold:      threshold,
		MaxPromptRunes: 2000,
		sessions:       make(map[string]*ChatSession),
	}
}

// Session returns the session for (userID, sessionKey), creating it on
// first use.
func (s *ChatService) Session(userID, sessionKey string) *ChatSession {
	key := userID + "/" + sessionKey
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &ChatSession{
			db:       s.DB,
			userID:   userID,
			metadata: domain.JSONMap{"session_key": sessionKey},
		}
		s.sessions[key] = sess
	}
	return sess
}

// Send validates the prompt, lazily ensures the conversation, persists the
// user message, retrieves an assistant reply, and persists that too. Both
// persists are fire-and-forget; only conversation creation is awaited.
func (s *ChatService) Send(ctx context.Context, userID, sessionKey, prompt string) (*ChatReply, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(prompt) > s.MaxPromptRunes {
		return nil, ErrPromptTooLong
	}

	sess := s.Session(userID, sessionKey)
	convID, err := sess.EnsureConversation(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := sess.SaveMessage(roleUser, prompt, nil); err != nil {
		return nil, err
	}

	reply, score := s.retrieve(prompt)
	var meta domain.JSONMap
	if score != nil {
		meta = domain.JSONMap{"score": *score}
	}
	seq, err := sess.SaveMessage(roleAssistant, reply, meta)
	if err != nil {
		return nil, err
	}

	return &ChatReply{
		ConversationID: convID,
		Reply:          reply,
		Score:          score,
		Sequence:       seq,
	}, nil
}

// SessionHistory returns the persisted messages of the session's current
// conversation, or nil when the session has not created one yet.
func (s *ChatService) SessionHistory(ctx context.Context, userID, sessionKey string) ([]domain.ConversationMessage, error) {
	sess := s.Session(userID, sessionKey)
	id := sess.ConversationID()
	if id == "" {
		return nil, nil
	}
	return repo.ListMessages(ctx, s.DB, id)
}

// History returns the persisted messages of the user's conversation,
// ordered by sequence number, after verifying ownership.
func (s *ChatService) History(ctx context.Context, userID, conversationID string) ([]domain.ConversationMessage, error) {
	if _, err := repo.GetConversation(ctx, s.DB, conversationID, userID); err != nil {
		return nil, ErrConversationNotFound
	}
	return repo.ListMessages(ctx, s.DB, conversationID)
}

// Clear resets the user's session, abandoning any prior conversation row.
func (s *ChatService) Clear(userID, sessionKey string) {
	s.Session(userID, sessionKey).Clear()
}

// Flush blocks until every session's in-flight message writes have
// completed. Called on shutdown so fire-and-forget persists are not lost.
func (s *ChatService) Flush() {
	s.mu.Lock()
	sessions := make([]*ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Wait()
	}
}

// retrieve answers from the call-narrative index; below-threshold matches
// fall back to a canned reply with no score.
func (s *ChatService) retrieve(prompt string) (string, *float64) {
	if s.Index == nil {
		return fallbackReply, nil
	}
	results := s.Index.TopK(prompt, 3)
	if len(results) == 0 || results[0].Score < s.Threshold {
		return fallbackReply, nil
	}
	best := results[0]
	return best.Snippet, &best.Score
}
