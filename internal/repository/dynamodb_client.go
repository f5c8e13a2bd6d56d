package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"travel-agent/internal/domain"
)

const skState = "STATE#"

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore keeps one item per user: PK USER#<id>, SK STATE#, the state
// document as JSON, a version number, and a TTL.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// NewDynamoStore creates a DynamoStore over tableName.
func NewDynamoStore(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName, now: time.Now}, nil
}

// userPK returns the DynamoDB partition key for a user.
func userPK(userID string) string {
	return "USER#" + userID
}

func (s *DynamoStore) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK": &types.AttributeValueMemberS{Value: skState},
	}
}

func (s *DynamoStore) LoadUser(ctx context.Context, userID string) (domain.UserState, error) {
	userID = NormalizeUserID(userID)
	if userID == "" {
		return domain.UserState{}, errors.New("repository: user id is required")
	}
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.UserState{}, fmt.Errorf("repository: LoadUser get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.UserState{UserID: userID}, nil
	}

	state, err := itemToState(out.Item)
	if err != nil {
		return domain.UserState{}, fmt.Errorf("repository: LoadUser decode: %w", err)
	}
	state.UserID = userID
	return state, nil
}

func (s *DynamoStore) SaveUser(ctx context.Context, state *domain.UserState) error {
	if err := validateSave(state); err != nil {
		return err
	}
	userID := NormalizeUserID(state.UserID)
	next := *state
	next.UserID = userID
	next.Version = state.Version + 1

	item, err := stateItem(next, ttlValue(s.now()))
	if err != nil {
		return fmt.Errorf("repository: SaveUser encode: %w", err)
	}
	in := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}
	if state.Version == 0 {
		in.ConditionExpression = aws.String("attribute_not_exists(PK)")
	} else {
		in.ConditionExpression = aws.String("version = :expected")
		in.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(state.Version, 10)},
		}
	}

	if _, err := s.api.PutItem(ctx, in); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrVersionConflict
		}
		return fmt.Errorf("repository: SaveUser put item: %w", err)
	}
	state.Version = next.Version
	return nil
}

func stateItem(state domain.UserState, ttl int64) (map[string]types.AttributeValue, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: userPK(state.UserID)},
		"SK":         &types.AttributeValueMemberS{Value: skState},
		"userId":     &types.AttributeValueMemberS{Value: state.UserID},
		"state":      &types.AttributeValueMemberS{Value: string(doc)},
		"lastSeenAt": &types.AttributeValueMemberS{Value: state.LastSeenAt.UTC().Format(time.RFC3339)},
		"version":    &types.AttributeValueMemberN{Value: strconv.FormatInt(state.Version, 10)},
		"ttl":        &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
	}, nil
}

func itemToState(item map[string]types.AttributeValue) (domain.UserState, error) {
	doc, err := strAttr(item, "state")
	if err != nil {
		return domain.UserState{}, err
	}
	version, err := intAttr(item, "version")
	if err != nil {
		return domain.UserState{}, err
	}
	var state domain.UserState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return domain.UserState{}, fmt.Errorf("repository: unmarshal state: %w", err)
	}
	state.Version = int64(version)
	return state, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
