package identity

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "brainnotes:session:"

// RedisSessionStore resolves opaque session tokens written into the shared
// Redis by the auth provider's legacy login flow. Entries carry their own TTL;
// this service only reads them.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore connects to Redis.
func NewRedisSessionStore(addr, password string) *RedisSessionStore {
	return &RedisSessionStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// Lookup resolves a session token to a user ID.
func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	val, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Close releases the underlying connection pool.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
