package notes

import (
	"context"
	"log/slog"
	"sync"

	"notesapp/internal/auth"
)

// Workspace is the pair of core components serving one signed-in identity:
// its note list controller and its single editing session.
type Workspace struct {
	Controller *Controller
	Editor     *EditingSession
}

// Workspaces hands out one workspace per identity, creating it on first
// use. Creation runs the initial fetch so the controller holds the owner's
// notes as soon as the identity is available.
type Workspaces struct {
	store Store
	md    *Markdown
	log   *slog.Logger

	mu      sync.Mutex
	byOwner map[string]*Workspace
}

func NewWorkspaces(store Store, md *Markdown, log *slog.Logger) *Workspaces {
	return &Workspaces{
		store:   store,
		md:      md,
		log:     log,
		byOwner: make(map[string]*Workspace),
	}
}

// For returns the identity's workspace, creating and hydrating it on first
// use. A failed initial fetch leaves the collection empty and is only
// logged; the next refresh retries it.
func (w *Workspaces) For(ctx context.Context, id auth.Identity) *Workspace {
	w.mu.Lock()
	ws, ok := w.byOwner[id.ID]
	if !ok {
		controller := NewController(w.store, w.md, w.log, id.ID)
		ws = &Workspace{
			Controller: controller,
			Editor:     NewEditingSession(controller),
		}
		w.byOwner[id.ID] = ws
	}
	w.mu.Unlock()

	if !ok {
		if err := ws.Controller.Fetch(ctx); err != nil {
			w.log.Error("initial fetch failed", "owner", id.ID, "error", err)
		}
	}
	return ws
}
