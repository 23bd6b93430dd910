package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps recovery sessions in Redis so that restarts (or multiple
// instances behind a balancer) do not drop a recovery mid-flow. Expiry is
// delegated to Redis TTLs.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func key(id string) string {
	return "recovery:" + id
}

func (s *RedisStore) Put(ctx context.Context, rec Recovery, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, key(rec.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("session: store: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Recovery, error) {
	data, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Recovery{}, ErrNotFound
		}
		return Recovery{}, fmt.Errorf("session: load: %w", err)
	}
	var rec Recovery
	if err := json.Unmarshal(data, &rec); err != nil {
		return Recovery{}, fmt.Errorf("session: unmarshal: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
