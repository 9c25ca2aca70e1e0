package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "auth:refresh:"

// RefreshStore tracks live refresh tokens by JWT ID. A refresh token
// is only honored while its jti is present; rotation and logout remove
// it.
type RefreshStore interface {
	Save(ctx context.Context, jti string, userID string, ttl time.Duration) error
	Exists(ctx context.Context, jti string) (bool, error)
	Delete(ctx context.Context, jti string) error
}

// RedisRefreshStore is a Redis-backed RefreshStore with TTL matching
// the refresh token lifetime.
type RedisRefreshStore struct {
	client *redis.Client
}

// NewRedisRefreshStore creates a Redis refresh store.
func NewRedisRefreshStore(client *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func (s *RedisRefreshStore) Save(ctx context.Context, jti string, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKeyPrefix+jti, userID, ttl).Err()
}

func (s *RedisRefreshStore) Exists(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, refreshKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisRefreshStore) Delete(ctx context.Context, jti string) error {
	return s.client.Del(ctx, refreshKeyPrefix+jti).Err()
}
