package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carepulse/booking-api/pkg/logging"
)

const uniformError = `{"error":"something went wrong"}`

// DirectoryAPI is the directory surface exposed over HTTP.
type DirectoryAPI interface {
	Create(ctx context.Context, email, phone, name string) (*User, error)
	Get(ctx context.Context, userID string) (*User, error)
}

// CreateUserRequest is the signup payload from the landing form.
type CreateUserRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// Handler handles HTTP requests for the user directory
type Handler struct {
	directory DirectoryAPI
	logger    *logging.Logger
}

// NewHandler creates a new users handler
func NewHandler(directory DirectoryAPI, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		directory: directory,
		logger:    logger,
	}
}

// Create handles POST /users requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode user request", "error", err)
		writeError(w, http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest)
		return
	}

	user, err := h.directory.Create(r.Context(), req.Email, req.Phone, req.Name)
	if err != nil {
		h.logger.Error("failed to create user", "error", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Get handles GET /users/{userID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	user, err := h.directory.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to fetch user", "error", err, "user_id", id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound)
		} else {
			writeError(w, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(uniformError))
}
