package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	maxBcryptInput = 72
	// MaxPepperBytes leaves room for a usable password inside bcrypt's input.
	MaxPepperBytes = 32
)

// ErrPasswordTooLong is returned when password+pepper exceeds what bcrypt reads.
var ErrPasswordTooLong = errors.New("password too long")

// PasswordHasher hashes peppered passwords with bcrypt. The number of hash
// operations in flight is bounded so bcrypt cannot monopolize every CPU.
type PasswordHasher struct {
	pepper string
	cost   int
	slots  *semaphore.Weighted
}

// NewPasswordHasher builds a hasher. concurrency <= 0 means one slot.
func NewPasswordHasher(pepper string, cost, concurrency int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if len(pepper) > MaxPepperBytes {
		return nil, fmt.Errorf("pepper is %d bytes, at most %d allowed", len(pepper), MaxPepperBytes)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PasswordHasher{
		pepper: pepper,
		cost:   cost,
		slots:  semaphore.NewWeighted(int64(concurrency)),
	}, nil
}

// Hash returns the bcrypt digest of password+pepper. The salt is embedded in the digest.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	input, ok := h.peppered(password)
	if !ok {
		return "", ErrPasswordTooLong
	}
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	hashed, err := bcrypt.GenerateFromPassword(input, h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches digest. Malformed digests,
// over-long passwords and a cancelled context report false.
func (h *PasswordHasher) Verify(ctx context.Context, password, digest string) bool {
	input, ok := h.peppered(password)
	if !ok {
		return false
	}
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), input) == nil
}

// peppered appends the pepper. Inputs past bcrypt's 72-byte limit are refused
// rather than truncated, since truncation would drop the pepper first.
func (h *PasswordHasher) peppered(password string) ([]byte, bool) {
	b := []byte(password + h.pepper)
	return b, len(b) <= maxBcryptInput
}
