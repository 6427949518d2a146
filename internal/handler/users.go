package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/msomdec/account-service/internal/domain"
	"github.com/msomdec/account-service/internal/service"
)

// UserHandler serves the /api/users endpoints.
type UserHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService, users *service.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// HandleList returns every user without passwords.
// GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		slog.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"users":  toUserDTOs(users),
	})
}

// HandleGet returns one user by path id.
// GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeUser(w, r, chi.URLParam(r, "id"))
}

// HandleSearch returns one user by the id query parameter.
// GET /api/users/search?id=...
func (h *UserHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}
	h.writeUser(w, r, id)
}

func (h *UserHandler) writeUser(w http.ResponseWriter, r *http.Request, id string) {
	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"user":   toUserDTO(user),
	})
}

// HandleCreate registers a user.
// POST /api/users
// Request:  {"account","password","name","mail","head"}
// Response: {"status":"success","message":...,"id":...}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readInput(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := h.users.Create(r.Context(), service.RegisterInput{
		Account:  req.Account,
		Password: req.Password,
		Name:     req.Name,
		Mail:     req.Mail,
		Head:     req.Head,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateAccount):
			writeError(w, http.StatusConflict, "account already exists")
		case errors.Is(err, domain.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email is already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("create user", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  statusSuccess,
		"message": "User created successfully",
		"id":      id,
	})
}

// HandleUpdate changes the acting user's profile and rotates the token.
// PUT /api/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	var req updateRequest
	if err := readInput(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	_, token, err := h.auth.UpdateProfile(r.Context(), session, chi.URLParam(r, "id"), service.UpdateInput{
		Password: req.Password,
		Name:     req.Name,
		Mail:     req.Mail,
		Head:     req.Head,
	})
	if err != nil {
		h.writeActionError(w, "update user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": "update successful",
		"token":   token,
	})
}

// HandleDelete removes the acting user's account.
// DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	token, err := h.auth.DeleteAccount(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		h.writeActionError(w, "delete user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": "user deleted",
		"token":   token,
	})
}

func (h *UserHandler) writeActionError(w http.ResponseWriter, action string, err error) {
	switch {
	case service.IsAuthError(err):
		writeError(w, http.StatusUnauthorized, msgTokenRevoked)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "you may only modify your own account")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(action, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// HandleLogin verifies credentials and returns a session token.
// POST /api/users/login
// Request:  {"account","password"}
// Response: {"status":"success","message":"Login successful","token":...}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readInput(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Account, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Invalid username or password")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": "Login successful",
		"token":   token,
	})
}

// HandleLogout retires the caller's token.
// POST /api/users/logout
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, err := h.auth.Logout(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		if service.IsAuthError(err) {
			writeError(w, http.StatusUnauthorized, msgTokenRevoked)
			return
		}
		slog.Error("logout user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": "logout successful",
		"token":   token,
	})
}

// HandleStatus confirms the session and hands back a fresh token.
// GET /api/users/status
func (h *UserHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	token, err := h.auth.Status(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		switch {
		case service.IsAuthError(err):
			writeError(w, http.StatusUnauthorized, msgTokenRevoked)
			return
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusBadRequest, "user not found")
			return
		}
		slog.Error("session status", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": "logged in",
		"token":   token,
	})
}
