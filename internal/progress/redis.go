package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/example/langflix/pkg/models"
)

// RedisBackend stores the progress document as one JSON value under key.
// A single SET replaces the whole document.
type RedisBackend struct {
	client redis.Cmdable
	key    string
}

func NewRedisBackend(client redis.Cmdable, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

func (b *RedisBackend) Load(ctx context.Context) (models.UserProgressStore, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.UserProgressStore{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", b.key, err)
	}

	store := models.UserProgressStore{}
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", b.key, err)
	}
	return store, nil
}

func (b *RedisBackend) Save(ctx context.Context, store models.UserProgressStore) error {
	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", b.key, err)
	}
	return nil
}
