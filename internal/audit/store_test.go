package audit

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/carepulse/booking-api/internal/events"
	"github.com/carepulse/booking-api/pkg/logging"
)

type mockS3 struct {
	putInput *s3.PutObjectInput
}

func (m *mockS3) PutObject(ctx context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.putInput = input
	return &s3.PutObjectOutput{}, nil
}

func TestStore_RecordChangeWritesDatePartitionedKey(t *testing.T) {
	mock := &mockS3{}
	store := NewStore(mock, "appointment-audit", logging.Default())

	evt := events.AppointmentChangedV1{
		EventID:       "e-1",
		AppointmentID: "appt-1",
		Action:        "schedule",
		Status:        "scheduled",
		OccurredAt:    time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}
	if err := store.RecordChange(context.Background(), evt); err != nil {
		t.Fatalf("RecordChange returned error: %v", err)
	}

	if aws.ToString(mock.putInput.Bucket) != "appointment-audit" {
		t.Fatalf("unexpected bucket: %s", aws.ToString(mock.putInput.Bucket))
	}
	key := aws.ToString(mock.putInput.Key)
	if key != "appointments/v1/by-date/2026/03/14/e-1.json" {
		t.Fatalf("unexpected key: %s", key)
	}

	data, err := io.ReadAll(mock.putInput.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	var stored events.AppointmentChangedV1
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("failed to decode stored event: %v", err)
	}
	if stored.AppointmentID != "appt-1" || stored.Status != "scheduled" {
		t.Fatalf("unexpected stored event: %+v", stored)
	}
	if !strings.Contains(aws.ToString(mock.putInput.ContentType), "application/json") {
		t.Fatalf("unexpected content type: %s", aws.ToString(mock.putInput.ContentType))
	}
}

func TestStore_DisabledWithoutBucket(t *testing.T) {
	mock := &mockS3{}
	store := NewStore(mock, "", logging.Default())

	if store.Enabled() {
		t.Fatal("store without a bucket must report disabled")
	}
	if err := store.RecordChange(context.Background(), events.AppointmentChangedV1{EventID: "e-1"}); err != nil {
		t.Fatalf("disabled store must no-op, got %v", err)
	}
	if mock.putInput != nil {
		t.Fatal("no S3 call expected from a disabled store")
	}
}
