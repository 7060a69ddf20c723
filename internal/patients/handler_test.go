package patients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carepulse/booking-api/pkg/logging"
)

type stubLookup struct {
	patient *Patient
	err     error
}

func (s *stubLookup) GetByID(ctx context.Context, patientID string) (*Patient, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.patient, nil
}

func (s *stubLookup) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.patient, nil
}

type stubRegistrar struct {
	input   *RegisterInput
	patient *Patient
	err     error
}

func (s *stubRegistrar) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	s.input = &in
	if s.err != nil {
		return nil, s.err
	}
	return s.patient, nil
}

func newPatientRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/patients", h.Register)
	r.Get("/patients/{patientID}", h.Get)
	r.Get("/users/{userID}/patient", h.GetByUser)
	return r
}

func multipartForm(t *testing.T, fields map[string]string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("identificationDocument", fileName)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("failed to write file data: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestHandler_RegisterParsesFormAndFile(t *testing.T) {
	registrar := &stubRegistrar{patient: &Patient{ID: "patient-1", UserID: "user-1"}}
	h := NewHandler(&stubLookup{}, registrar, logging.Default())

	body, contentType := multipartForm(t, map[string]string{
		"userId":         "user-1",
		"name":           "Jamie Rivera",
		"email":          "jamie@example.com",
		"phone":          "+15551234567",
		"privacyConsent": "true",
	}, "passport.png", []byte("imagedata"))

	req := httptest.NewRequest(http.MethodPost, "/patients", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newPatientRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	in := registrar.input
	if in == nil {
		t.Fatal("expected registrar to be called")
	}
	if in.Patient.UserID != "user-1" || in.Patient.Name != "Jamie Rivera" {
		t.Fatalf("unexpected patient fields: %+v", in.Patient)
	}
	if !in.Patient.PrivacyConsent {
		t.Fatal("expected privacy consent to parse as true")
	}
	if in.Document == nil || in.Document.FileName != "passport.png" {
		t.Fatalf("expected file part to be captured, got %+v", in.Document)
	}
	if string(in.Document.Data) != "imagedata" {
		t.Fatalf("unexpected file data: %q", in.Document.Data)
	}
}

func TestHandler_RegisterWithoutFile(t *testing.T) {
	registrar := &stubRegistrar{patient: &Patient{ID: "patient-1"}}
	h := NewHandler(&stubLookup{}, registrar, logging.Default())

	body, contentType := multipartForm(t, map[string]string{"userId": "user-1"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/patients", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newPatientRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if registrar.input.Document != nil {
		t.Fatal("expected no document")
	}
}

func TestHandler_RegisterFailureIsUniform(t *testing.T) {
	registrar := &stubRegistrar{err: errors.New("s3 down")}
	h := NewHandler(&stubLookup{}, registrar, logging.Default())

	body, contentType := multipartForm(t, map[string]string{"userId": "user-1"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/patients", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newPatientRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "something went wrong") {
		t.Fatalf("expected uniform error body, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "s3 down") {
		t.Fatal("internal error detail leaked into the response")
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	h := NewHandler(&stubLookup{err: ErrNotFound}, &stubRegistrar{}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/patients/missing", nil)
	rec := httptest.NewRecorder()
	newPatientRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_GetByUser(t *testing.T) {
	lookup := &stubLookup{patient: &Patient{ID: "patient-1", UserID: "user-1"}}
	h := NewHandler(lookup, &stubRegistrar{}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/patient", nil)
	rec := httptest.NewRecorder()
	newPatientRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got Patient
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != "patient-1" {
		t.Fatalf("unexpected patient: %+v", got)
	}
}

func TestHandler_GetByUserNotFound(t *testing.T) {
	h := NewHandler(&stubLookup{err: ErrNotFound}, &stubRegistrar{}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/patient", nil)
	rec := httptest.NewRecorder()
	newPatientRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
