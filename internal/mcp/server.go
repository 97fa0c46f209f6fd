package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"notesapp/internal/auth"
	"notesapp/internal/notes"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the note store to agent
// tooling. Owner-scoped tools resolve the owner by email through the
// session provider.
func NewServer(store notes.Store, md *notes.Markdown, provider auth.SessionProvider) *server.MCPServer {
	s := server.NewMCPServer(
		"NotesApp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List all notes owned by a user, newest update first."),
			mcp.WithString("owner_email",
				mcp.Required(),
				mcp.Description("Email of the note owner"),
			),
		),
		handleListNotes(store, provider),
	)

	s.AddTool(
		mcp.NewTool("search_notes",
			mcp.WithDescription("Search a user's notes by case-insensitive substring over title and plain-text content."),
			mcp.WithString("owner_email",
				mcp.Required(),
				mcp.Description("Email of the note owner"),
			),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Substring to match against note titles and content"),
			),
		),
		handleSearchNotes(store, md, provider),
	)

	s.AddTool(
		mcp.NewTool("create_note",
			mcp.WithDescription("Create a note for a user. The title must not be empty."),
			mcp.WithString("owner_email",
				mcp.Required(),
				mcp.Description("Email of the note owner"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Note title"),
			),
			mcp.WithString("content",
				mcp.Description("Note content (markdown)"),
			),
		),
		handleCreateNote(store, provider),
	)

	s.AddTool(
		mcp.NewTool("update_note",
			mcp.WithDescription("Overwrite the title and content of an existing note. An unknown id matches nothing and is reported as success."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note id"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("New note title, must not be empty"),
			),
			mcp.WithString("content",
				mcp.Description("New note content (markdown)"),
			),
		),
		handleUpdateNote(store),
	)

	s.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a note by id. An unknown id is reported as success."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note id"),
			),
		),
		handleDeleteNote(store),
	)

	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a single note by id."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note id"),
			),
		),
		handleGetNote(store),
	)

	return s
}

// NoteResult represents a note in tool responses.
type NoteResult struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedOn  time.Time `json:"createdOn"`
	LastUpdate time.Time `json:"lastUpdate"`
}

func handleListNotes(store notes.Store, provider auth.SessionProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		email, err := req.RequireString("owner_email")
		if err != nil {
			return mcp.NewToolResultError("owner_email is required"), nil
		}

		owner, err := provider.LookupByEmail(ctx, email)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown owner: %v", err)), nil
		}

		list, err := store.ListByOwner(ctx, owner.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
		}

		data, _ := json.MarshalIndent(notesToResults(list), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleSearchNotes(store notes.Store, md *notes.Markdown, provider auth.SessionProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		email, err := req.RequireString("owner_email")
		if err != nil {
			return mcp.NewToolResultError("owner_email is required"), nil
		}
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		owner, err := provider.LookupByEmail(ctx, email)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown owner: %v", err)), nil
		}

		list, err := store.ListByOwner(ctx, owner.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
		}

		q := strings.ToLower(query)
		var matched []notes.Note
		for _, n := range list {
			if strings.Contains(strings.ToLower(n.Title), q) ||
				strings.Contains(strings.ToLower(md.PlainText(n.Content)), q) {
				matched = append(matched, n)
			}
		}

		data, _ := json.MarshalIndent(notesToResults(matched), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleCreateNote(store notes.Store, provider auth.SessionProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		email, err := req.RequireString("owner_email")
		if err != nil {
			return mcp.NewToolResultError("owner_email is required"), nil
		}
		title, err := req.RequireString("title")
		if err != nil || strings.TrimSpace(title) == "" {
			return mcp.NewToolResultError("title must not be empty"), nil
		}

		owner, err := provider.LookupByEmail(ctx, email)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown owner: %v", err)), nil
		}

		n, err := store.Insert(ctx, owner.ID, notes.Draft{
			Title:   title,
			Content: req.GetString("content", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create note: %v", err)), nil
		}

		data, _ := json.MarshalIndent(noteToResult(n), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleUpdateNote(store notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		title, err := req.RequireString("title")
		if err != nil || strings.TrimSpace(title) == "" {
			return mcp.NewToolResultError("title must not be empty"), nil
		}

		err = store.Update(ctx, id, notes.Draft{
			Title:   title,
			Content: req.GetString("content", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update note: %v", err)), nil
		}

		return mcp.NewToolResultText("updated"), nil
	}
}

func handleDeleteNote(store notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		if err := store.Delete(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
		}

		return mcp.NewToolResultText("deleted"), nil
	}
}

func handleGetNote(store notes.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		n, err := store.Get(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}

		data, _ := json.MarshalIndent(noteToResult(n), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func noteToResult(n notes.Note) NoteResult {
	return NoteResult{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		CreatedOn:  n.CreatedOn,
		LastUpdate: n.LastUpdate,
	}
}

func notesToResults(list []notes.Note) []NoteResult {
	results := make([]NoteResult, len(list))
	for i, n := range list {
		results[i] = noteToResult(n)
	}
	return results
}
