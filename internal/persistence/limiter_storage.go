package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const limiterPrefix = "haras:ratelimit:"

// LimiterStorage implements fiber.Storage on Redis so the fixed-window rate
// limiter counts requests across every instance of the service.
type LimiterStorage struct {
	client  redis.UniversalClient
	timeout time.Duration
}

var _ fiber.Storage = (*LimiterStorage)(nil)

// NewLimiterStorage wraps a Redis client.
func NewLimiterStorage(client redis.UniversalClient) *LimiterStorage {
	return &LimiterStorage{client: client, timeout: time.Second}
}

// Get returns nil, nil for a missing key, as fiber.Storage requires.
func (s *LimiterStorage) Get(key string) ([]byte, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	val, err := s.client.Get(ctx, limiterPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *LimiterStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Set(ctx, limiterPrefix+key, val, exp).Err()
}

func (s *LimiterStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Del(ctx, limiterPrefix+key).Err()
}

// Reset removes every limiter key.
func (s *LimiterStorage) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()

	iter := s.client.Scan(ctx, 0, limiterPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the client is owned by Redis.
func (s *LimiterStorage) Close() error {
	return nil
}

func (s *LimiterStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
