package patients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carepulse/booking-api/pkg/logging"
)

const uniformError = `{"error":"something went wrong"}`

// maxDocumentSize bounds identification-document uploads (10 MiB).
const maxDocumentSize = 10 << 20

// Lookup is the read surface exposed over HTTP.
type Lookup interface {
	GetByID(ctx context.Context, patientID string) (*Patient, error)
	GetByUserID(ctx context.Context, userID string) (*Patient, error)
}

// Registrar runs the registration flow.
type Registrar interface {
	Register(ctx context.Context, in RegisterInput) (*Patient, error)
}

// Handler handles HTTP requests for patients
type Handler struct {
	lookup    Lookup
	registrar Registrar
	logger    *logging.Logger
}

// NewHandler creates a new patients handler
func NewHandler(lookup Lookup, registrar Registrar, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		lookup:    lookup,
		registrar: registrar,
		logger:    logger,
	}
}

// Register handles POST /patients requests (multipart form with an optional
// identificationDocument file part).
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		h.logger.Error("failed to parse registration form", "error", err)
		writeError(w, http.StatusBadRequest)
		return
	}

	in := RegisterInput{
		Patient: Patient{
			UserID:                 r.FormValue("userId"),
			Name:                   r.FormValue("name"),
			Email:                  r.FormValue("email"),
			Phone:                  r.FormValue("phone"),
			BirthDate:              r.FormValue("birthDate"),
			Gender:                 r.FormValue("gender"),
			Address:                r.FormValue("address"),
			Occupation:             r.FormValue("occupation"),
			EmergencyContactName:   r.FormValue("emergencyContactName"),
			EmergencyContactNumber: r.FormValue("emergencyContactNumber"),
			PrimaryPhysician:       r.FormValue("primaryPhysician"),
			InsuranceProvider:      r.FormValue("insuranceProvider"),
			InsurancePolicyNumber:  r.FormValue("insurancePolicyNumber"),
			Allergies:              r.FormValue("allergies"),
			CurrentMedication:      r.FormValue("currentMedication"),
			IdentificationType:     r.FormValue("identificationType"),
			IdentificationNumber:   r.FormValue("identificationNumber"),
			PrivacyConsent:         r.FormValue("privacyConsent") == "true",
		},
	}

	if file, header, err := r.FormFile("identificationDocument"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
		if err != nil {
			h.logger.Error("failed to read identification document", "error", err)
			writeError(w, http.StatusBadRequest)
			return
		}
		in.Document = &IdentificationDocument{
			FileName: header.Filename,
			Data:     data,
		}
	}

	patient, err := h.registrar.Register(r.Context(), in)
	if err != nil {
		h.logger.Error("patient registration failed", "error", err, "user_id", in.Patient.UserID)
		writeError(w, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, patient)
}

// Get handles GET /patients/{patientID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "patientID")
	patient, err := h.lookup.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to fetch patient", "error", err, "patient_id", id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound)
		} else {
			writeError(w, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// GetByUser handles GET /users/{userID}/patient requests
func (h *Handler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	patient, err := h.lookup.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.logger.Info("no patient found for user", "user_id", userID)
			writeError(w, http.StatusNotFound)
		} else {
			h.logger.Error("failed to resolve patient for user", "error", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, patient)
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
