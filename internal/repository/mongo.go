package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travel-agent/internal/domain"
)

// mongoCollection is the part of *mongo.Collection used by MongoStore.
type mongoCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

// MongoStore keeps one document per user, keyed by the normalized email.
type MongoStore struct {
	coll mongoCollection
}

func NewMongoStore(coll mongoCollection) (*MongoStore, error) {
	if coll == nil {
		return nil, errors.New("repository: collection must not be nil")
	}
	return &MongoStore{coll: coll}, nil
}

func (s *MongoStore) LoadUser(ctx context.Context, userID string) (domain.UserState, error) {
	userID = NormalizeUserID(userID)
	if userID == "" {
		return domain.UserState{}, errors.New("repository: user id is required")
	}
	var state domain.UserState
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.UserState{UserID: userID}, nil
	}
	if err != nil {
		return domain.UserState{}, fmt.Errorf("repository: LoadUser find: %w", err)
	}
	state.UserID = userID
	return state, nil
}

func (s *MongoStore) SaveUser(ctx context.Context, state *domain.UserState) error {
	if err := validateSave(state); err != nil {
		return err
	}
	next := *state
	next.UserID = NormalizeUserID(state.UserID)
	next.Version = state.Version + 1

	if state.Version == 0 {
		if _, err := s.coll.InsertOne(ctx, next); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("repository: SaveUser insert: %w", err)
		}
		state.Version = next.Version
		return nil
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": next.UserID, "version": state.Version}, next)
	if err != nil {
		return fmt.Errorf("repository: SaveUser replace: %w", err)
	}
	if res == nil || res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	state.Version = next.Version
	return nil
}
