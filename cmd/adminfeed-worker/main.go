package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carepulse/booking-api/cmd/awsconfig"
	"github.com/carepulse/booking-api/internal/audit"
	appconfig "github.com/carepulse/booking-api/internal/config"
	"github.com/carepulse/booking-api/internal/events"
	"github.com/carepulse/booking-api/internal/observability/metrics"
	"github.com/carepulse/booking-api/internal/worker/adminfeed"
	"github.com/carepulse/booking-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AppointmentEventsQueueURL == "" || cfg.AuditBucket == "" {
		logger.Error("admin feed worker requires APPOINTMENT_EVENTS_QUEUE_URL and AUDIT_BUCKET")
		os.Exit(1)
	}

	awsCfg, err := awsconfig.Load(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	queue := events.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.AppointmentEventsQueueURL)
	archiver := audit.NewStore(s3.NewFromConfig(awsCfg), cfg.AuditBucket, logger)

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		logger.Info("metrics listening", "addr", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	worker := adminfeed.NewWorker(queue, archiver, bookingMetrics, logger,
		adminfeed.WithReceiveWaitSeconds(cfg.EventPollWaitSeconds),
		adminfeed.WithPollInterval(cfg.EventPollInterval),
	)
	go worker.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("admin feed worker shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	time.Sleep(2 * time.Second)
}
