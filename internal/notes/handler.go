package notes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"notesapp/internal/auth"
)

// Handler exposes the note list controller and editing session over HTTP.
// All routes run behind the auth middleware; the workspace registry maps
// the request identity to its controller/editor pair.
type Handler struct {
	workspaces *Workspaces
	md         *Markdown
	log        *slog.Logger
}

func NewHandler(workspaces *Workspaces, md *Markdown, log *slog.Logger) *Handler {
	return &Handler{workspaces: workspaces, md: md, log: log}
}

func (h *Handler) workspace(r *http.Request) (*Workspace, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return nil, false
	}
	return h.workspaces.For(r.Context(), id), true
}

// --- Note list ---

// ListNotes handles GET /api/notes?q=
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}

	view := ws.Controller.FilteredView(r.URL.Query().Get("q"))
	if view == nil {
		view = []Note{}
	}
	h.jsonResponse(w, view, http.StatusOK)
}

// RefreshNotes handles POST /api/notes/refresh
func (h *Handler) RefreshNotes(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}

	if err := ws.Controller.Fetch(r.Context()); err != nil {
		h.log.Error("failed to fetch notes", "error", err)
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, ws.Controller.Notes(), http.StatusOK)
}

// noteDetail is a note plus its rendered content.
type noteDetail struct {
	Note
	HTML string `json:"html"`
}

// GetNote handles GET /api/notes/{id}; it reads the local collection, not
// the store.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}

	n, found := ws.Controller.Get(r.PathValue("id"))
	if !found {
		h.jsonError(w, "note not found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, noteDetail{Note: n, HTML: h.md.Render(n.Content)}, http.StatusOK)
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}

	if err := ws.Controller.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.log.Error("failed to delete note", "error", err)
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Editing session ---

type editorView struct {
	State  string `json:"state"`
	NoteID string `json:"noteId,omitempty"`
	Draft  Draft  `json:"draft"`
}

type openInput struct {
	NoteID string `json:"noteId"`
}

type draftInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Editor handles GET /api/editor
func (h *Handler) Editor(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}
	h.editorResponse(w, ws)
}

// OpenEditor handles POST /api/editor/open. With a noteId it opens the
// matching local note for edit; without one it opens an empty create draft.
func (h *Handler) OpenEditor(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}

	var input openInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	if input.NoteID == "" {
		ws.Editor.Open(nil)
		h.editorResponse(w, ws)
		return
	}

	n, found := ws.Controller.Get(input.NoteID)
	if !found {
		h.jsonError(w, "note not found", http.StatusNotFound)
		return
	}
	ws.Editor.Open(&n)
	h.editorResponse(w, ws)
}

// EditDraft handles PATCH /api/editor/draft; absent fields are left alone.
func (h *Handler) EditDraft(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}

	var input draftInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if input.Title != nil {
		if err := ws.Editor.EditTitle(*input.Title); err != nil {
			h.jsonError(w, err.Error(), http.StatusConflict)
			return
		}
	}
	if input.Content != nil {
		if err := ws.Editor.EditContent(*input.Content); err != nil {
			h.jsonError(w, err.Error(), http.StatusConflict)
			return
		}
	}

	h.editorResponse(w, ws)
}

// SaveEditor handles POST /api/editor/save
func (h *Handler) SaveEditor(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}

	err := ws.Editor.Save(r.Context())
	switch {
	case errors.Is(err, ErrSessionClosed):
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, ErrEmptyTitle):
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		h.log.Error("failed to save note", "error", err)
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, ws.Controller.Notes(), http.StatusOK)
}

// CancelEditor handles POST /api/editor/cancel
func (h *Handler) CancelEditor(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(r)
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}

	ws.Editor.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// --- Helper methods ---

func (h *Handler) editorResponse(w http.ResponseWriter, ws *Workspace) {
	state, noteID, draft := ws.Editor.Snapshot()
	h.jsonResponse(w, editorView{
		State:  state.String(),
		NoteID: noteID,
		Draft:  draft,
	}, http.StatusOK)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
