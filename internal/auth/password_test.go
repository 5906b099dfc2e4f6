package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T, pepper string) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(pepper, bcrypt.MinCost, 2)
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t, "pepper")
	ctx := context.Background()

	pairs := [][2]string{
		{"correct horse battery", "correct horse batterY"},
		{"12345678", "123456789"},
		{"كلمة-سر-طويلة", "كلمة-سر-طويله"},
	}
	for _, p := range pairs {
		digest, err := h.Hash(ctx, p[0])
		require.NoError(t, err)
		assert.True(t, h.Verify(ctx, p[0], digest), p[0])
		assert.False(t, h.Verify(ctx, p[1], digest), p[1])
	}
}

func TestPasswordHasher_SaltPerCall(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t, "")
	ctx := context.Background()

	a, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_PepperApplied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	peppered := newTestHasher(t, "secret-pepper")

	digest, err := peppered.Hash(ctx, "password1")
	require.NoError(t, err)

	assert.False(t, newTestHasher(t, "").Verify(ctx, "password1", digest))
	assert.False(t, newTestHasher(t, "other").Verify(ctx, "password1", digest))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(digest), []byte("password1secret-pepper")))
}

func TestPasswordHasher_DefaultCostEmbedded(t *testing.T) {
	t.Parallel()
	h, err := NewPasswordHasher("", 12, 1)
	require.NoError(t, err)

	digest, err := h.Hash(context.Background(), "password1")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t, "")
	ctx := context.Background()

	for _, digest := range []string{"", "not-a-hash", "$2a$04$short", strings.Repeat("x", 60)} {
		assert.False(t, h.Verify(ctx, "password1", digest), digest)
	}
}

func TestPasswordHasher_CancelledContext(t *testing.T) {
	t.Parallel()
	h, err := NewPasswordHasher("", bcrypt.MinCost, 1)
	require.NoError(t, err)

	digest, err := h.Hash(context.Background(), "password1")
	require.NoError(t, err)

	require.NoError(t, h.slots.Acquire(context.Background(), 1))
	defer h.slots.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Hash(ctx, "password1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.Verify(ctx, "password1", digest))
}

func TestNewPasswordHasher_InvalidCost(t *testing.T) {
	t.Parallel()
	_, err := NewPasswordHasher("", 2, 1)
	assert.Error(t, err)
	_, err = NewPasswordHasher("", 40, 1)
	assert.Error(t, err)
}

func TestPasswordHasher_LongPasswordRejected(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t, "pepper")
	ctx := context.Background()

	// 100 two-byte runes: within the 100-character form limit, past bcrypt's.
	long := strings.Repeat("ح", 100)
	_, err := h.Hash(ctx, long)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// 66 bytes + 6 bytes of pepper is exactly the limit.
	fits := strings.Repeat("a", 66)
	digest, err := h.Hash(ctx, fits)
	require.NoError(t, err)
	assert.True(t, h.Verify(ctx, fits, digest))
	_, err = h.Hash(ctx, fits+"a")
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestPasswordHasher_PepperNeverTruncated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newTestHasher(t, "pepper")

	// A digest of the first 72 bytes alone, as if the pepper had been cut off.
	password := strings.Repeat("b", 72)
	unpeppered, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, h.Verify(ctx, password, string(unpeppered)))
	assert.False(t, h.Verify(ctx, password+"-anything", string(unpeppered)))
}

func TestNewPasswordHasher_PepperTooLong(t *testing.T) {
	t.Parallel()
	_, err := NewPasswordHasher(strings.Repeat("p", MaxPepperBytes+1), bcrypt.MinCost, 1)
	assert.Error(t, err)
	_, err = NewPasswordHasher(strings.Repeat("p", MaxPepperBytes), bcrypt.MinCost, 1)
	assert.NoError(t, err)
}
