// Package services defines the business logic for team analytics, member
// insights, coaching notes, profiles, and assistant chat sessions. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

var (
	// ErrTeamNotFound indicates that the requested team does not exist.
	ErrTeamNotFound = errors.New("team not found")

	// ErrMemberNotFound indicates that the requested team member does not
	// exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrNoteNotFound indicates that the requested coaching note does not
	// exist or is not owned by the requesting coach.
	ErrNoteNotFound = errors.New("note not found")

	// ErrEmptyNote is returned when a coaching note has no content after
	// trimming.
	ErrEmptyNote = errors.New("note is empty")

	// ErrNoteTooLong is returned when a coaching note exceeds the maximum
	// configured length.
	ErrNoteTooLong = errors.New("note too long")

	// ErrEmptyTeamName is returned when a team is created with a blank name.
	ErrEmptyTeamName = errors.New("team name is empty")

	// ErrAlreadyMember is returned when a join request names a user already
	// on the team.
	ErrAlreadyMember = errors.New("already a team member")

	// ErrNotMember is returned when a leave request names a user not on the
	// team.
	ErrNotMember = errors.New("not a team member")

	// ErrEmptyPrompt is returned when a chat message contains no content.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrPromptTooLong is returned when a chat message exceeds the maximum
	// configured length.
	ErrPromptTooLong = errors.New("prompt too long")

	// ErrConversationNotFound indicates that the requested conversation does
	// not exist or belongs to another user.
	ErrConversationNotFound = errors.New("conversation not found")
)
