package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aryodp/edgegate/internal/domain"
)

// SnapshotKey is the single Redis key holding the serialized dataset.
const SnapshotKey = "edgegate:snapshot"

// RedisStore persists the snapshot in Redis. Useful when the service
// runs without a writable filesystem; selected by configuring a
// Redis address.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (*domain.Dataset, error) {
	data, err := s.client.Get(ctx, SnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read snapshot from redis: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse redis snapshot: %w", err)
	}
	if env.Data == nil {
		return nil, domain.ErrNoSnapshot
	}

	return env.dataset(), nil
}

// Save stores the snapshot without a TTL: the dataset stays servable
// after any amount of downtime, matching the file backend.
func (s *RedisStore) Save(ctx context.Context, ds *domain.Dataset) error {
	data, err := json.Marshal(wrap(ds))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, SnapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}

	return nil
}
