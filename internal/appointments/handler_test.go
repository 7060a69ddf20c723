package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carepulse/booking-api/internal/patients"
	"github.com/carepulse/booking-api/pkg/logging"
)

type stubSubmitter struct {
	appt *Appointment
	err  error
	subs []Submission
}

func (s *stubSubmitter) Submit(ctx context.Context, sub Submission) (*Appointment, error) {
	s.subs = append(s.subs, sub)
	if s.err != nil {
		return nil, s.err
	}
	return s.appt, nil
}

type stubReader struct {
	appt *Appointment
	list *RecentList
	err  error
}

func (s *stubReader) Get(ctx context.Context, id string) (*Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.appt, nil
}

func (s *stubReader) ListRecent(ctx context.Context) (*RecentList, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func newHandlerRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/appointments", h.Submit)
	r.Get("/appointments/{appointmentID}", h.Get)
	r.Get("/admin/appointments", h.ListRecent)
	return r
}

func TestHandler_SubmitCreateReturns201(t *testing.T) {
	submitter := &stubSubmitter{appt: &Appointment{ID: "appt-1", Status: StatusPending}}
	h := NewHandler(submitter, &stubReader{}, logging.Default())

	body := `{"action":"create","userId":"user-1","patientId":"patient-1"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newHandlerRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var appt Appointment
	if err := json.NewDecoder(rec.Body).Decode(&appt); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if appt.ID != "appt-1" || appt.Status != StatusPending {
		t.Fatalf("unexpected appointment: %+v", appt)
	}
}

func TestHandler_SubmitScheduleReturns200(t *testing.T) {
	submitter := &stubSubmitter{appt: &Appointment{ID: "appt-1", Status: StatusScheduled}}
	h := NewHandler(submitter, &stubReader{}, logging.Default())

	body := `{"action":"schedule","userId":"user-1","appointmentId":"appt-1"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newHandlerRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_SubmitRejectsUnknownAction(t *testing.T) {
	submitter := &stubSubmitter{}
	h := NewHandler(submitter, &stubReader{}, logging.Default())

	body := `{"action":"approve","userId":"user-1"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newHandlerRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(submitter.subs) != 0 {
		t.Fatal("invalid actions must be rejected before the service runs")
	}
	if !strings.Contains(rec.Body.String(), "something went wrong") {
		t.Fatalf("expected uniform error body, got %s", rec.Body.String())
	}
}

func TestHandler_SubmitErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing appointment id", ErrMissingAppointmentID, http.StatusBadRequest},
		{"patient not found", patients.ErrNotFound, http.StatusUnprocessableEntity},
		{"store failure", errors.New("dynamo down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&stubSubmitter{err: tc.err}, &stubReader{}, logging.Default())

			body := `{"action":"schedule","userId":"user-1"}`
			req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
			rec := httptest.NewRecorder()
			newHandlerRouter(h).ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if body := rec.Body.String(); !strings.Contains(body, "something went wrong") {
				t.Fatalf("expected uniform error body, got %s", body)
			}
			if strings.Contains(rec.Body.String(), tc.err.Error()) {
				t.Fatal("internal error detail leaked into the response")
			}
		})
	}
}

func TestHandler_SubmitMalformedJSON(t *testing.T) {
	h := NewHandler(&stubSubmitter{}, &stubReader{}, logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	newHandlerRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	h := NewHandler(&stubSubmitter{}, &stubReader{err: ErrNotFound}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/appointments/missing", nil)
	rec := httptest.NewRecorder()
	newHandlerRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_ListRecent(t *testing.T) {
	list := &RecentList{
		TotalCount:     2,
		ScheduledCount: 1,
		PendingCount:   1,
		Documents: []Appointment{
			{ID: "b", Status: StatusScheduled},
			{ID: "a", Status: StatusPending},
		},
	}
	h := NewHandler(&stubSubmitter{}, &stubReader{list: list}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	rec := httptest.NewRecorder()
	newHandlerRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got RecentList
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.TotalCount != 2 || got.ScheduledCount != 1 || got.PendingCount != 1 {
		t.Fatalf("unexpected list: %+v", got)
	}
}
