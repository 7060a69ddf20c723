package users

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

// ErrNotFound indicates the requested user id does not exist.
var ErrNotFound = errors.New("users: user not found")

// User is a directory entry identifying the person who owns patient records.
// Its id is the routing key for appointment notifications.
type User struct {
	ID        string `dynamodbav:"id" json:"id"`
	Email     string `dynamodbav:"email" json:"email"`
	Phone     string `dynamodbav:"phone" json:"phone"`
	Name      string `dynamodbav:"name" json:"name"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Directory is the DynamoDB-backed user directory.
type Directory struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewDirectory builds a directory backed by the provided DynamoDB client.
func NewDirectory(client dynamoAPI, tableName string, logger *logging.Logger) *Directory {
	if client == nil {
		panic("users: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("users: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Directory{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Create registers a new user. When the email is already registered the
// existing user is returned instead of an error, so repeat form submissions
// resolve to the same identity.
func (d *Directory) Create(ctx context.Context, email, phone, name string) (*User, error) {
	if email == "" {
		return nil, errors.New("users: email required")
	}

	existing, err := d.findByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		d.logger.Info("user already registered, returning existing",
			"email", email, "user_id", existing.ID)
		return existing, nil
	}

	u := &User{
		ID:        uuid.NewString(),
		Email:     email,
		Phone:     phone,
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return nil, fmt.Errorf("users: failed to marshal user: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("users: failed to persist user: %w", err)
	}
	return u, nil
}

// Get fetches a user by id.
func (d *Directory) Get(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, errors.New("users: user id required")
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("users: failed to fetch user %s: %w", userID, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var u User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("users: failed to decode user: %w", err)
	}
	return &u, nil
}

func (d *Directory) findByEmail(ctx context.Context, email string) (*User, error) {
	// The filter runs per scanned page; an empty page with a LastEvaluatedKey
	// does not mean the email is unregistered.
	var startKey map[string]types.AttributeValue
	for {
		out, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(d.tableName),
			FilterExpression: aws.String("email = :email"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":email": &types.AttributeValueMemberS{Value: email},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("users: failed to query users by email: %w", err)
		}
		if len(out.Items) > 0 {
			var u User
			if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
				return nil, fmt.Errorf("users: failed to decode user: %w", err)
			}
			return &u, nil
		}
		if out.LastEvaluatedKey == nil {
			return nil, ErrNotFound
		}
		startKey = out.LastEvaluatedKey
	}
}
