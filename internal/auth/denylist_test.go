package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisDenylist_ExpiredTokenSkipsWrite(t *testing.T) {
	d := NewRedisDenylist(unreachableRedis(t))
	err := d.Revoke(context.Background(), "jti-1", time.Now().Add(-time.Minute))
	assert.NoError(t, err)

	consumed, err := d.Consume(context.Background(), "jti-1", time.Now().Add(-time.Minute))
	assert.NoError(t, err)
	assert.False(t, consumed)
}

func TestRedisDenylist_PropagatesErrors(t *testing.T) {
	d := NewRedisDenylist(unreachableRedis(t))
	ctx := context.Background()

	err := d.Revoke(ctx, "jti-2", time.Now().Add(time.Hour))
	assert.Error(t, err)

	revoked, err := d.IsRevoked(ctx, "jti-2")
	assert.Error(t, err)
	assert.False(t, revoked)

	consumed, err := d.Consume(ctx, "jti-2", time.Now().Add(time.Hour))
	assert.Error(t, err)
	assert.False(t, consumed)
}
