package appointments

import (
	"context"
	"errors"
	"fmt"
	"sort"
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
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists appointment documents to DynamoDB.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointments: table name cannot be empty")
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

// Create inserts a new appointment document, assigning its id and timestamps.
func (s *Store) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	if appt == nil {
		return nil, errors.New("appointments: appointment cannot be nil")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	appt.ID = uuid.NewString()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to marshal appointment: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to persist appointment: %w", err)
	}
	return appt, nil
}

// Get fetches an appointment by id.
func (s *Store) Get(ctx context.Context, id string) (*Appointment, error) {
	if id == "" {
		return nil, errors.New("appointments: id required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to fetch appointment %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var appt Appointment
	if err := attributevalue.UnmarshalMap(out.Item, &appt); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode appointment: %w", err)
	}
	return &appt, nil
}

// Update writes the partial schedule/cancel document and returns the new state.
func (s *Store) Update(ctx context.Context, id string, upd Update) (*Appointment, error) {
	if id == "" {
		return nil, ErrMissingAppointmentID
	}

	schedAttr, err := attributevalue.Marshal(upd.Schedule)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to marshal schedule: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET #status = :status, primaryPhysician = :physician, schedule = :schedule, cancellationReason = :reason, updatedAt = :updated"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":    &types.AttributeValueMemberS{Value: string(upd.Status)},
			":physician": &types.AttributeValueMemberS{Value: upd.PrimaryPhysician},
			":schedule":  schedAttr,
			":reason":    &types.AttributeValueMemberS{Value: upd.CancellationReason},
			":updated":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
		ReturnValues:        types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to update appointment %s: %w", id, err)
	}

	var appt Appointment
	if err := attributevalue.UnmarshalMap(out.Attributes, &appt); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode updated appointment: %w", err)
	}
	return &appt, nil
}

// ListRecent returns all appointments newest first with per-status counts.
func (s *Store) ListRecent(ctx context.Context) (*RecentList, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("appointments: failed to list appointments: %w", err)
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	var docs []Appointment
	if err := attributevalue.UnmarshalListOfMaps(items, &docs); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode appointments: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt > docs[j].CreatedAt
	})

	list := &RecentList{
		TotalCount: len(docs),
		Documents:  docs,
	}
	for _, d := range docs {
		switch d.Status {
		case StatusScheduled:
			list.ScheduledCount++
		case StatusPending:
			list.PendingCount++
		case StatusCanceled:
			list.CancelledCount++
		}
	}
	if list.Documents == nil {
		list.Documents = []Appointment{}
	}
	return list, nil
}
