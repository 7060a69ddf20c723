package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carepulse/booking-api/internal/appointments"
	httpmiddleware "github.com/carepulse/booking-api/internal/http/middleware"
	"github.com/carepulse/booking-api/internal/patients"
	"github.com/carepulse/booking-api/internal/users"
	"github.com/carepulse/booking-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	PatientsHandler     *patients.Handler
	UsersHandler        *users.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AppointmentsHandler != nil {
		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", cfg.AppointmentsHandler.Submit)
			r.Get("/{appointmentID}", cfg.AppointmentsHandler.Get)
		})
		r.Get("/admin/appointments", cfg.AppointmentsHandler.ListRecent)
	}

	if cfg.PatientsHandler != nil {
		r.Route("/patients", func(r chi.Router) {
			r.Post("/", cfg.PatientsHandler.Register)
			r.Get("/{patientID}", cfg.PatientsHandler.Get)
		})
	}

	if cfg.UsersHandler != nil {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", cfg.UsersHandler.Create)
			r.Get("/{userID}", cfg.UsersHandler.Get)
			if cfg.PatientsHandler != nil {
				r.Get("/{userID}/patient", cfg.PatientsHandler.GetByUser)
			}
		})
	}

	return r
}
