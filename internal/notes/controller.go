package notes

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Controller holds the authoritative local copy of one owner's notes and
// mediates every read and write against the remote store.
//
// Writes go through the store and then resynchronize: create/update trigger
// a full refetch rather than guessing the stored record locally, delete
// removes the matching id optimistically without a refetch. Individual
// operations are mutex-guarded, but overlapping operations are not
// serialized against each other: a fetch that resolves after a concurrent
// delete will clobber the delete's local removal. That race is inherited
// from the reference behavior and left as-is.
type Controller struct {
	store   Store
	md      *Markdown
	log     *slog.Logger
	ownerID string

	mu         sync.RWMutex
	collection []Note
}

// NewController binds a controller to one owner identity. The store and
// identity arrive as parameters so tests can substitute both.
func NewController(store Store, md *Markdown, log *slog.Logger, ownerID string) *Controller {
	return &Controller{
		store:   store,
		md:      md,
		log:     log,
		ownerID: ownerID,
	}
}

// Fetch replaces the local collection with the owner's notes from the
// store, ordered by last update descending. On store failure the local
// collection is left unchanged and the error is returned; there is no
// retry.
func (c *Controller) Fetch(ctx context.Context) error {
	if c.ownerID == "" {
		return ErrNoIdentity
	}

	fetched, err := c.store.ListByOwner(ctx, c.ownerID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.collection = fetched
	c.mu.Unlock()
	return nil
}

// Create writes a new note for the owner and refetches the collection.
// The title must be non-empty after trimming; the store assigns the id and
// timestamps. A refetch failure after a successful write is logged, not
// returned: the write already happened and the caller's draft is spent.
func (c *Controller) Create(ctx context.Context, draft Draft) error {
	if c.ownerID == "" {
		return ErrNoIdentity
	}
	if strings.TrimSpace(draft.Title) == "" {
		return ErrEmptyTitle
	}

	if _, err := c.store.Insert(ctx, c.ownerID, draft); err != nil {
		return err
	}

	if err := c.Fetch(ctx); err != nil {
		c.log.Error("refetch after create failed", "error", err)
	}
	return nil
}

// Update writes title/content to an existing note and refetches. An id
// that no longer exists matches zero rows at the store and is treated as
// success. Same title guard and refetch policy as Create.
func (c *Controller) Update(ctx context.Context, noteID string, draft Draft) error {
	if c.ownerID == "" {
		return ErrNoIdentity
	}
	if strings.TrimSpace(draft.Title) == "" {
		return ErrEmptyTitle
	}

	if err := c.store.Update(ctx, noteID, draft); err != nil {
		return err
	}

	if err := c.Fetch(ctx); err != nil {
		c.log.Error("refetch after update failed", "error", err)
	}
	return nil
}

// Delete removes the note from the store, then drops it from the local
// collection by id match. No refetch; an unknown id is a no-op success.
func (c *Controller) Delete(ctx context.Context, noteID string) error {
	if err := c.store.Delete(ctx, noteID); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.collection[:0:0]
	for _, n := range c.collection {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	c.collection = kept
	c.mu.Unlock()
	return nil
}

// Notes returns a snapshot of the local collection.
func (c *Controller) Notes() []Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Note(nil), c.collection...)
}

// Get returns a note from the local collection by id.
func (c *Controller) Get(noteID string) (Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, n := range c.collection {
		if n.ID == noteID {
			return n, true
		}
	}
	return Note{}, false
}

// FilteredView derives the subset of the local collection whose title or
// markup-stripped content contains query as a case-insensitive substring.
// An empty query returns the full collection in unchanged order. Pure
// derivation: the collection itself is never mutated.
func (c *Controller) FilteredView(query string) []Note {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if query == "" {
		return append([]Note(nil), c.collection...)
	}

	q := strings.ToLower(query)
	var matched []Note
	for _, n := range c.collection {
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(c.md.PlainText(n.Content)), q) {
			matched = append(matched, n)
		}
	}
	return matched
}
