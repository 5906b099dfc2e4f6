package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "haras:revoked:"

// Denylist records revoked token ids until the token would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Consume atomically revokes jti and reports whether this call did so.
	// Only one of several concurrent callers for the same jti gets true.
	Consume(ctx context.Context, jti string, until time.Time) (bool, error)
}

// RedisDenylist keeps revoked token ids as expiring Redis keys.
type RedisDenylist struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisDenylist constructs a Redis-backed denylist.
func NewRedisDenylist(client redis.UniversalClient) *RedisDenylist {
	return &RedisDenylist{client: client, now: time.Now}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, denylistPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token %s: %w", jti, err)
	}
	return n > 0, nil
}

func (d *RedisDenylist) Consume(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return false, nil
	}
	ok, err := d.client.SetNX(ctx, denylistPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("consume token %s: %w", jti, err)
	}
	return ok, nil
}
