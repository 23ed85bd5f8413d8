package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisStatePrefix = "zaiko:login-state:"

// RedisStateStore keeps pending login states in Redis so callbacks can
// land on any replica. The TTL is enforced server-side; no sweeper is
// needed.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = DefaultLoginStateTTL
	}
	return &RedisStateStore{client: client, ttl: ttl}
}

func (s *RedisStateStore) Put(ctx context.Context, state, nonce string) error {
	return s.client.Set(ctx, redisStatePrefix+state, nonce, s.ttl).Err()
}

func (s *RedisStateStore) Take(ctx context.Context, state string) (string, error) {
	nonce, err := s.client.GetDel(ctx, redisStatePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownState
	}
	if err != nil {
		return "", err
	}
	return nonce, nil
}
