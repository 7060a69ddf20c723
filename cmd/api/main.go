package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carepulse/booking-api/cmd/awsconfig"
	"github.com/carepulse/booking-api/internal/api/router"
	"github.com/carepulse/booking-api/internal/appointments"
	appconfig "github.com/carepulse/booking-api/internal/config"
	"github.com/carepulse/booking-api/internal/events"
	"github.com/carepulse/booking-api/internal/notify"
	"github.com/carepulse/booking-api/internal/observability/metrics"
	"github.com/carepulse/booking-api/internal/patients"
	"github.com/carepulse/booking-api/internal/users"
	"github.com/carepulse/booking-api/pkg/logging"
)

func main() {
	// Load .env if present; real deployments rely on the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	awsCfg, err := awsconfig.Load(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	s3Client := s3.NewFromConfig(awsCfg)

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Stores
	appointmentStore := appointments.NewStore(dynamoClient, cfg.AppointmentsTable, logger)
	patientStore := patients.NewStore(dynamoClient, cfg.PatientsTable, logger)
	userDirectory := users.NewDirectory(dynamoClient, cfg.UsersTable, logger)
	registration := patients.NewRegistration(patientStore, s3Client, cfg.DocumentBucket, cfg.PublicBaseURL, logger)

	// Notification channels
	var smsSender notify.SMSSender
	if cfg.SMSAPIKey != "" && cfg.SMSFromNumber != "" {
		smsSender = notify.NewTelnyxSender(cfg.SMSAPIKey, cfg.SMSMessagingProfileID, cfg.SMSFromNumber, logger)
		logger.Info("sms sender initialized", "provider", "telnyx")
	} else {
		smsSender = notify.NewStubSMSSender(logger)
		logger.Warn("SMS_API_KEY/SMS_FROM_NUMBER not set, using stub SMS sender")
	}

	var emailSender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			emailSender = sender
			logger.Info("email sender initialized", "provider", "sendgrid")
		} else {
			logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY not set, email disabled")
		}
	case "ses":
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			emailSender = sender
			logger.Info("email sender initialized", "provider", "ses")
		}
	default:
		logger.Info("email copies disabled", "provider", cfg.EmailProvider)
	}

	dispatcher := notify.NewDispatcher(smsSender, emailSender, userDirectory, bookingMetrics, logger)

	// Change events are optional: without a queue URL the API runs standalone
	// and the admin feed falls back to reading the document store directly.
	var publisher appointments.EventPublisher
	if cfg.AppointmentEventsQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsCfg)
		queue := events.NewSQSQueue(sqsClient, cfg.AppointmentEventsQueueURL)
		publisher = events.NewPublisher(queue, logger)
		logger.Info("appointment event publisher initialized", "queue_url", cfg.AppointmentEventsQueueURL)
	} else {
		logger.Warn("APPOINTMENT_EVENTS_QUEUE_URL not set, appointment events disabled")
	}

	appointmentService := appointments.NewService(appointmentStore, patientStore, dispatcher, publisher, bookingMetrics, logger)

	// Handlers
	appointmentsHandler := appointments.NewHandler(appointmentService, appointmentStore, logger)
	patientsHandler := patients.NewHandler(patientStore, registration, logger)
	usersHandler := users.NewHandler(userDirectory, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointmentsHandler,
		PatientsHandler:     patientsHandler,
		UsersHandler:        usersHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
