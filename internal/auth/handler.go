package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Handler exposes the session provider over HTTP.
type Handler struct {
	provider SessionProvider
	log      *slog.Logger
}

func NewHandler(provider SessionProvider, log *slog.Logger) *Handler {
	return &Handler{provider: provider, log: log}
}

type signUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserName string `json:"userName"`
}

type signInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /api/auth/signup
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input signUpInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	id, err := h.provider.SignUp(r.Context(), input.Email, input.Password, input.UserName)
	if errors.Is(err, ErrEmailTaken) {
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	if errors.Is(err, ErrInvalidCredentials) {
		h.jsonError(w, "email and password are required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("sign-up failed", "error", err)
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, id, http.StatusCreated)
}

// SignIn handles POST /api/auth/signin
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input signInInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	token, id, err := h.provider.SignIn(r.Context(), input.Email, input.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		h.jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.log.Error("sign-in failed", "error", err)
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]any{"token": token, "identity": id}, http.StatusOK)
}

// SignOut handles POST /api/auth/signout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.jsonError(w, "missing bearer token", http.StatusUnauthorized)
		return
	}

	if err := h.provider.SignOut(r.Context(), token); err != nil {
		h.log.Error("sign-out failed", "error", err)
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me; it runs behind Require.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		h.jsonError(w, "no identity", http.StatusUnauthorized)
		return
	}
	h.jsonResponse(w, id, http.StatusOK)
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
