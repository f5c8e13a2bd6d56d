package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"travel-agent/internal/domain"
)

const userKeyPrefix = "travel-agent:user:"

// compareAndSet writes ARGV[1] to KEYS[1] only when the stored document's
// version equals ARGV[2]. ARGV[3] is the expiry in seconds.
const compareAndSet = `
local cur = redis.call('GET', KEYS[1])
local version = 0
if cur then
	version = tonumber(cjson.decode(cur)['version']) or 0
end
if version ~= tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[3])
return 1
`

// redisAPI is the part of *redis.Client used by RedisStore.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisStore keeps each user as a JSON string with a sliding TTL.
type RedisStore struct {
	client redisAPI
	ttl    time.Duration
}

func NewRedisStore(client redisAPI, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("repository: redis client must not be nil")
	}
	if ttl <= 0 {
		ttl = ttlDuration
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) LoadUser(ctx context.Context, userID string) (domain.UserState, error) {
	userID = NormalizeUserID(userID)
	if userID == "" {
		return domain.UserState{}, errors.New("repository: user id is required")
	}
	data, err := s.client.Get(ctx, userKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.UserState{UserID: userID}, nil
	}
	if err != nil {
		return domain.UserState{}, fmt.Errorf("repository: LoadUser get: %w", err)
	}
	var state domain.UserState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return domain.UserState{}, fmt.Errorf("repository: LoadUser decode: %w", err)
	}
	state.UserID = userID
	return state, nil
}

func (s *RedisStore) SaveUser(ctx context.Context, state *domain.UserState) error {
	if err := validateSave(state); err != nil {
		return err
	}
	next := *state
	next.UserID = NormalizeUserID(state.UserID)
	next.Version = state.Version + 1
	doc, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("repository: SaveUser encode: %w", err)
	}

	ok, err := s.client.Eval(ctx, compareAndSet, []string{userKeyPrefix + next.UserID},
		string(doc), state.Version, int64(s.ttl/time.Second)).Int()
	if err != nil {
		return fmt.Errorf("repository: SaveUser eval: %w", err)
	}
	if ok != 1 {
		return ErrVersionConflict
	}
	state.Version = next.Version
	return nil
}
