package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/coachlens/call-insights-backend/internal/repo"
)

const maxNoteRunes = 4000

// NoteView is a coaching note with the coach's display name resolved.
type NoteView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CoachID   string    `json:"coach_id"`
	CoachName string    `json:"coach_name,omitempty"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteService manages coaching notes left on a rep by coaches.
type NoteService struct {
	DB *gorm.DB
}

// NewNoteService constructs a NoteService.
func NewNoteService(db *gorm.DB) *NoteService {
	return &NoteService{DB: db}
}

// CreateNote validates and persists a note from coachID on userID.
func (s *NoteService) CreateNote(ctx context.Context, userID, coachID, note string) (*NoteView, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrEmptyNote
	}
	if utf8.RuneCountInString(note) > maxNoteRunes {
		return nil, ErrNoteTooLong
	}
	if _, err := repo.GetMember(ctx, s.DB, userID); err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	n, err := repo.CreateNote(ctx, s.DB, userID, coachID, note)
	if err != nil {
		return nil, err
	}
	return &NoteView{
		ID:        n.ID,
		UserID:    n.UserID,
		CoachID:   n.CoachID,
		Note:      n.Note,
		CreatedAt: n.CreatedAt,
	}, nil
}

// ListNotes returns the rep's notes, newest first, with coach names
// resolved in one batched lookup.
func (s *NoteService) ListNotes(ctx context.Context, userID string) ([]NoteView, error) {
	notes, err := repo.ListNotesForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	coachIDs := make([]string, 0, len(notes))
	seen := make(map[string]bool, len(notes))
	for _, n := range notes {
		if !seen[n.CoachID] {
			seen[n.CoachID] = true
			coachIDs = append(coachIDs, n.CoachID)
		}
	}
	names := make(map[string]string, len(coachIDs))
	if len(coachIDs) > 0 {
		coaches, err := repo.ListMembersByIDs(ctx, s.DB, coachIDs)
		if err != nil {
			return nil, err
		}
		for _, c := range coaches {
			names[c.ID] = c.Name
		}
	}

	out := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		out = append(out, NoteView{
			ID:        n.ID,
			UserID:    n.UserID,
			CoachID:   n.CoachID,
			CoachName: names[n.CoachID],
			Note:      n.Note,
			CreatedAt: n.CreatedAt,
		})
	}
	return out, nil
}

// DeleteNote removes a note; only its author may delete it.
func (s *NoteService) DeleteNote(ctx context.Context, id, coachID string) error {
	err := repo.DeleteNote(ctx, s.DB, id, coachID)
	if err == repo.ErrNotFound {
		return ErrNoteNotFound
	}
	return err
}
