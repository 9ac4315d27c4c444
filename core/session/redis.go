package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// redisStore keeps each session in a redis hash ("session:<id>") whose TTL is
// refreshed on every access; expiry is therefore redis' problem, not ours.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*redisStore)(nil)

// NewRedisStore connects to redisURL and returns a redis-backed Store.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis URL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func sessionKey(id string) string { return "session:" + id }

func (s *redisStore) refresh(ctx context.Context, id string) {
	s.client.Expire(ctx, sessionKey(id), s.ttl)
}

func (s *redisStore) Ensure(ctx context.Context, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	s.refresh(ctx, id)
	return id, nil
}

func (s *redisStore) Keys(ctx context.Context, id string) ([]string, error) {
	keys, err := s.client.HKeys(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing session keys")
	}
	s.refresh(ctx, id)
	return keys, nil
}

func (s *redisStore) Get(ctx context.Context, id, key string) (interface{}, error) {
	raw, err := s.client.HGet(ctx, sessionKey(id), key).Result()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting session value")
	}
	s.refresh(ctx, id)

	var val interface{}
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, errors.Wrap(err, "decoding session value")
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, id, key string, val interface{}) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "encoding session value")
	}
	if err := s.client.HSet(ctx, sessionKey(id), key, raw).Err(); err != nil {
		return errors.Wrap(err, "setting session value")
	}
	s.refresh(ctx, id)
	return nil
}

func (s *redisStore) Delete(ctx context.Context, id, key string) error {
	n, err := s.client.HDel(ctx, sessionKey(id), key).Result()
	if err != nil {
		return errors.Wrap(err, "deleting session value")
	}
	if n == 0 {
		return ErrKeyNotFound
	}
	s.refresh(ctx, id)
	return nil
}

func (s *redisStore) Clear(ctx context.Context, id string) error {
	return errors.Wrap(s.client.Del(ctx, sessionKey(id)).Err(), "clearing session")
}

func (s *redisStore) Increment(ctx context.Context, id, name string, delta int64) (int64, error) {
	// counters are stored as bare digits, which is also valid JSON; HIncrBy
	// rejects anything else.
	n, err := s.client.HIncrBy(ctx, sessionKey(id), name, delta).Result()
	if err != nil {
		if isNotIntegerErr(err) {
			return 0, ErrNotCounter
		}
		return 0, errors.Wrap(err, "incrementing counter")
	}
	s.refresh(ctx, id)
	return n, nil
}

// isNotIntegerErr matches redis' reply when HIncrBy hits a hash value that is
// not an integer. Anything else (network, wrong type) stays an infra error.
func isNotIntegerErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "hash value is not an integer")
}

func (s *redisStore) ResetCounter(ctx context.Context, id, name string) error {
	if err := s.client.HSet(ctx, sessionKey(id), name, "0").Err(); err != nil {
		return errors.Wrap(err, "resetting counter")
	}
	s.refresh(ctx, id)
	return nil
}

func (s *redisStore) Sweep(context.Context) int { return 0 } // redis expires keys itself
