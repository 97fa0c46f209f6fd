package notes

import "context"

// Store is the remote note store as the controller consumes it: an
// owner-filtered select plus keyed insert/update/delete. The mongo-backed
// Repo is the production implementation; tests substitute their own.
type Store interface {
	// ListByOwner returns every note owned by userID, ordered by
	// last_update descending.
	ListByOwner(ctx context.Context, userID string) ([]Note, error)

	// Insert persists a new note for userID. The store assigns the id and
	// both timestamps and returns the stored record.
	Insert(ctx context.Context, userID string, draft Draft) (Note, error)

	// Update writes title/content to the note with the given id and bumps
	// last_update. Matching zero rows is not an error.
	Update(ctx context.Context, noteID string, draft Draft) error

	// Delete removes the note with the given id. Matching zero rows is not
	// an error.
	Delete(ctx context.Context, noteID string) error

	// Get returns a single note by id.
	Get(ctx context.Context, noteID string) (Note, error)
}
