package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"travel-agent/internal/domain"
)

type fakeRedis struct {
	getResult  *redis.StringCmd
	evalResult *redis.Cmd
	lastKey    string
	evalKeys   []string
	evalArgs   []interface{}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.lastKey = key
	return f.getResult
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.evalKeys = keys
	f.evalArgs = args
	return f.evalResult
}

func TestRedisLoadUser(t *testing.T) {
	doc, err := json.Marshal(domain.UserState{
		UserID:  "ana@example.com",
		Name:    "Ana",
		Visa:    &domain.VisaContext{Country: "Dubai", Data: json.RawMessage(`{"a":1}`)},
		Version: 9,
	})
	require.NoError(t, err)

	client := &fakeRedis{getResult: redis.NewStringResult(string(doc), nil)}
	s, err := NewRedisStore(client, 0)
	require.NoError(t, err)
	require.Equal(t, ttlDuration, s.ttl)

	got, err := s.LoadUser(context.Background(), "Ana@example.com")
	require.NoError(t, err)
	require.Equal(t, "travel-agent:user:ana@example.com", client.lastKey)
	require.Equal(t, int64(9), got.Version)
	require.Equal(t, "Dubai", got.Visa.Country)
}

func TestRedisLoadUser_Missing(t *testing.T) {
	s, err := NewRedisStore(&fakeRedis{getResult: redis.NewStringResult("", redis.Nil)}, time.Hour)
	require.NoError(t, err)
	got, err := s.LoadUser(context.Background(), "x@y.z")
	require.NoError(t, err)
	require.Equal(t, domain.UserState{UserID: "x@y.z"}, got)
}

func TestRedisLoadUser_Errors(t *testing.T) {
	s, err := NewRedisStore(&fakeRedis{getResult: redis.NewStringResult("", errors.New("connection refused"))}, time.Hour)
	require.NoError(t, err)
	_, err = s.LoadUser(context.Background(), "x@y.z")
	require.ErrorContains(t, err, "connection refused")

	s, err = NewRedisStore(&fakeRedis{getResult: redis.NewStringResult("{not json", nil)}, time.Hour)
	require.NoError(t, err)
	_, err = s.LoadUser(context.Background(), "x@y.z")
	require.ErrorContains(t, err, "decode")
}

func TestRedisSaveUser(t *testing.T) {
	client := &fakeRedis{evalResult: redis.NewCmdResult(int64(1), nil)}
	s, err := NewRedisStore(client, time.Hour)
	require.NoError(t, err)

	state := &domain.UserState{UserID: "x@y.z", Name: "X", Version: 2}
	require.NoError(t, s.SaveUser(context.Background(), state))
	require.Equal(t, int64(3), state.Version)
	require.Equal(t, []string{"travel-agent:user:x@y.z"}, client.evalKeys)
	require.Len(t, client.evalArgs, 3)
	require.Equal(t, int64(2), client.evalArgs[1])
	require.Equal(t, int64(3600), client.evalArgs[2])

	var written domain.UserState
	require.NoError(t, json.Unmarshal([]byte(client.evalArgs[0].(string)), &written))
	require.Equal(t, int64(3), written.Version)
}

func TestRedisSaveUser_Conflict(t *testing.T) {
	s, err := NewRedisStore(&fakeRedis{evalResult: redis.NewCmdResult(int64(0), nil)}, time.Hour)
	require.NoError(t, err)
	state := &domain.UserState{UserID: "x@y.z", Version: 2}
	require.ErrorIs(t, s.SaveUser(context.Background(), state), ErrVersionConflict)
	require.Equal(t, int64(2), state.Version)
}

func TestRedisSaveUser_EvalError(t *testing.T) {
	s, err := NewRedisStore(&fakeRedis{evalResult: redis.NewCmdResult(nil, errors.New("NOSCRIPT"))}, time.Hour)
	require.NoError(t, err)
	err = s.SaveUser(context.Background(), &domain.UserState{UserID: "x@y.z"})
	require.ErrorContains(t, err, "NOSCRIPT")
	require.NotErrorIs(t, err, ErrVersionConflict)
}
