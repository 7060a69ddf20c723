package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carepulse/booking-api/internal/patients"
	"github.com/carepulse/booking-api/pkg/logging"
)

// uniformError is the single failure body the UI sees. Which failure actually
// happened stays in the logs.
const uniformError = `{"error":"something went wrong"}`

// Submitter runs one booking-form submission.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*Appointment, error)
}

// Reader serves the confirmation page and the admin dashboard.
type Reader interface {
	Get(ctx context.Context, id string) (*Appointment, error)
	ListRecent(ctx context.Context) (*RecentList, error)
}

// Handler handles HTTP requests for appointments
type Handler struct {
	svc    Submitter
	reader Reader
	logger *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(svc Submitter, reader Reader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:    svc,
		reader: reader,
		logger: logger,
	}
}

// Submit handles POST /appointments requests
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.logger.Error("failed to decode submission", "error", err)
		writeError(w, http.StatusBadRequest)
		return
	}

	if _, err := ParseAction(string(sub.Action)); err != nil {
		h.logger.Error("rejected submission", "error", err)
		writeError(w, http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Submit(r.Context(), sub)
	if err != nil {
		h.logger.Error("submission failed",
			"error", err, "action", sub.Action, "user_id", sub.UserID)
		switch {
		case errors.Is(err, ErrMissingAppointmentID), errors.Is(err, ErrUnknownAction):
			writeError(w, http.StatusBadRequest)
		case errors.Is(err, patients.ErrNotFound):
			writeError(w, http.StatusUnprocessableEntity)
		default:
			writeError(w, http.StatusInternalServerError)
		}
		return
	}

	status := http.StatusOK
	if sub.Action == ActionCreate {
		status = http.StatusCreated
	}
	writeJSON(w, status, appt)
}

// Get handles GET /appointments/{appointmentID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")
	appt, err := h.reader.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to fetch appointment", "error", err, "appointment_id", id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound)
		} else {
			writeError(w, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// ListRecent handles GET /admin/appointments requests
func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	list, err := h.reader.ListRecent(r.Context())
	if err != nil {
		h.logger.Error("failed to list recent appointments", "error", err)
		writeError(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
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
