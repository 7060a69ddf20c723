package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/carepulse/booking-api/internal/events"
	"github.com/carepulse/booking-api/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store writes appointment change events to S3 as an append-only audit trail.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewStore creates an audit Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if the audit trail is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// RecordChange writes one event as JSON under a date-partitioned key.
func (s *Store) RecordChange(ctx context.Context, evt events.AppointmentChangedV1) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}

	occurred := evt.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	key := fmt.Sprintf("appointments/v1/by-date/%d/%02d/%02d/%s.json",
		occurred.Year(), occurred.Month(), occurred.Day(), evt.EventID)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("audit: s3 put %s: %w", key, err)
	}

	s.logger.Info("appointment change archived",
		"event_id", evt.EventID,
		"appointment_id", evt.AppointmentID,
		"s3_key", key,
	)
	return nil
}
