package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/carepulse/booking-api/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists patient documents to DynamoDB. Every lookup is a fresh
// round trip; nothing is cached between calls.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("patients: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("patients: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Create inserts a new patient document, assigning its id and timestamp.
func (s *Store) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if p == nil {
		return nil, errors.New("patients: patient cannot be nil")
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return nil, fmt.Errorf("patients: failed to marshal patient: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("patients: failed to persist patient: %w", err)
	}
	return p, nil
}

// GetByID fetches a patient by its own document id.
func (s *Store) GetByID(ctx context.Context, patientID string) (*Patient, error) {
	if patientID == "" {
		return nil, errors.New("patients: patient id required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: patientID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("patients: failed to fetch patient %s: %w", patientID, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var p Patient
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("patients: failed to decode patient: %w", err)
	}
	return &p, nil
}

// GetByUserID resolves the patient owned by the given user. Zero matches is
// the same typed not-found as GetByID; it is never an infrastructure error.
func (s *Store) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	if userID == "" {
		return nil, errors.New("patients: user id required")
	}
	// The filter runs after each page is read, so a page can come back empty
	// while the match sits on a later one. Keep scanning until a match shows
	// up or the table is exhausted.
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.tableName),
			FilterExpression: aws.String("userId = :userId"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":userId": &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("patients: failed to query patients for user %s: %w", userID, err)
		}
		if len(out.Items) > 0 {
			if len(out.Items) > 1 {
				s.logger.Warn("multiple patients resolved for user, using first", "user_id", userID, "count", len(out.Items))
			}
			var p Patient
			if err := attributevalue.UnmarshalMap(out.Items[0], &p); err != nil {
				return nil, fmt.Errorf("patients: failed to decode patient: %w", err)
			}
			return &p, nil
		}
		if out.LastEvaluatedKey == nil {
			return nil, ErrNotFound
		}
		startKey = out.LastEvaluatedKey
	}
}
