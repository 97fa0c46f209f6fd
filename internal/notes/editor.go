package notes

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrSessionClosed is returned when a draft edit or save is attempted with
// no editor open.
var ErrSessionClosed = errors.New("editing session is closed")

// SessionState enumerates the editing session lifecycle.
type SessionState int

const (
	// Closed is the initial and terminal state: no draft exists.
	Closed SessionState = iota
	// CreatingDraft is an open editor bound to no note.
	CreatingDraft
	// EditingDraft is an open editor bound to an existing note id.
	EditingDraft
)

func (s SessionState) String() string {
	switch s {
	case CreatingDraft:
		return "creating"
	case EditingDraft:
		return "editing"
	default:
		return "closed"
	}
}

// EditingSession is the single open editor for one identity: bound either
// to an existing note (edit) or to none (create). It exclusively owns the
// draft until a save hands it to the controller or a cancel discards it.
type EditingSession struct {
	controller *Controller

	mu     sync.Mutex
	state  SessionState
	noteID string
	draft  Draft
}

func NewEditingSession(controller *Controller) *EditingSession {
	return &EditingSession{controller: controller}
}

// Open starts a session. With a note it opens for edit and seeds the draft
// from the note; with nil it opens an empty create draft. Opening while
// already open simply replaces the current draft and target.
func (s *EditingSession) Open(note *Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note != nil {
		s.state = EditingDraft
		s.noteID = note.ID
		s.draft = Draft{Title: note.Title, Content: note.Content}
		return
	}
	s.state = CreatingDraft
	s.noteID = ""
	s.draft = Draft{}
}

// EditTitle updates the draft title in place. Valid only while open.
func (s *EditingSession) EditTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return ErrSessionClosed
	}
	s.draft.Title = title
	return nil
}

// EditContent updates the draft content in place. Valid only while open.
func (s *EditingSession) EditContent(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return ErrSessionClosed
	}
	s.draft.Content = content
	return nil
}

// Save hands the draft to the controller: create when unbound, update when
// bound. A whitespace-only title rejects the save before any store
// interaction and the session stays open. A failed delegate also keeps the
// session open with the draft intact; only a successful save closes and
// clears it.
func (s *EditingSession) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return ErrSessionClosed
	}
	if strings.TrimSpace(s.draft.Title) == "" {
		return ErrEmptyTitle
	}

	var err error
	switch s.state {
	case CreatingDraft:
		err = s.controller.Create(ctx, s.draft)
	case EditingDraft:
		err = s.controller.Update(ctx, s.noteID, s.draft)
	}
	if err != nil {
		return err
	}

	s.state = Closed
	s.noteID = ""
	s.draft = Draft{}
	return nil
}

// Cancel discards the draft and closes the session. No store interaction.
func (s *EditingSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Closed
	s.noteID = ""
	s.draft = Draft{}
}

// Snapshot returns the current state, bound note id and draft.
func (s *EditingSession) Snapshot() (SessionState, string, Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.noteID, s.draft
}
