package notes

import (
	"errors"
	"time"
)

var (
	// ErrNoteNotFound is returned by reads for an unknown note id. Writes
	// (update/delete) deliberately do not return it: a zero-row match is
	// reported as success, matching the hosted-store behavior the app was
	// built against.
	ErrNoteNotFound = errors.New("note not found")

	// ErrEmptyTitle rejects any attempt to persist a note whose trimmed
	// title is empty.
	ErrEmptyTitle = errors.New("note title cannot be empty")

	// ErrNoIdentity is returned when a controller operation runs without a
	// resolved owner identity.
	ErrNoIdentity = errors.New("no identity bound to controller")
)

// Note is a persisted note record. The field layout mirrors the hosted
// `notes` table: store-assigned id, immutable owner, timestamps maintained
// by the store on every write.
type Note struct {
	ID         string    `bson:"_id" json:"noteId"`
	UserID     string    `bson:"user_id" json:"userId"`
	Title      string    `bson:"note_title" json:"title"`
	Content    string    `bson:"note_content" json:"content"` // markdown
	CreatedOn  time.Time `bson:"created_on" json:"createdOn"`
	LastUpdate time.Time `bson:"last_update" json:"lastUpdate"`
}

// Draft is an unsaved title/content pair owned by an open editing session.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
