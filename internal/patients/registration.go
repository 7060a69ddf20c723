package patients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/carepulse/booking-api/pkg/logging"
)

// S3API is the subset of the S3 client the registration flow uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Creator persists the registered patient document.
type Creator interface {
	Create(ctx context.Context, p *Patient) (*Patient, error)
}

// IdentificationDocument is an optional upload attached during registration.
type IdentificationDocument struct {
	FileName string
	Data     []byte
}

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Patient  Patient
	Document *IdentificationDocument
}

// Registration creates patient records, uploading the identification
// document to the file store first so the stored record can reference it.
type Registration struct {
	store         Creator
	s3Client      S3API
	bucket        string
	publicBaseURL string
	logger        *logging.Logger
}

// NewRegistration creates the registration service.
func NewRegistration(store Creator, s3Client S3API, bucket, publicBaseURL string, logger *logging.Logger) *Registration {
	if store == nil {
		panic("patients: patient store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Registration{
		store:         store,
		s3Client:      s3Client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// Register stores the identification document (when provided) and creates
// the patient record carrying the derived file reference.
func (r *Registration) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if in.Patient.UserID == "" {
		return nil, errors.New("patients: owning user id required")
	}

	p := in.Patient
	if in.Document != nil && len(in.Document.Data) > 0 {
		fileID, viewURL, err := r.uploadDocument(ctx, in.Document)
		if err != nil {
			return nil, err
		}
		p.IdentificationDocumentID = fileID
		p.IdentificationDocumentURL = viewURL
	}

	created, err := r.store.Create(ctx, &p)
	if err != nil {
		return nil, err
	}

	r.logger.Info("patient registered",
		"patient_id", created.ID, "user_id", created.UserID,
		"has_document", created.IdentificationDocumentID != "")
	return created, nil
}

func (r *Registration) uploadDocument(ctx context.Context, doc *IdentificationDocument) (string, string, error) {
	if r.s3Client == nil || r.bucket == "" {
		return "", "", errors.New("patients: file store not configured")
	}

	fileID := uuid.NewString()
	key := fmt.Sprintf("files/%s/%s", fileID, doc.FileName)
	contentType := http.DetectContentType(doc.Data)

	_, err := r.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("patients: failed to upload identification document: %w", err)
	}

	viewURL := fmt.Sprintf("%s/storage/buckets/%s/files/%s/view", r.publicBaseURL, r.bucket, fileID)
	return fileID, viewURL, nil
}
