// Package repositorytest provides in-memory repository implementations for tests.
package repositorytest

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/haras-web/internal/domain"
	"github.com/spec-kit/haras-web/internal/repository"
)

// UserRepository is a concurrency-safe in-memory repository.UserRepository that
// enforces email uniqueness the way the users table does.
type UserRepository struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*domain.User
	byEmail map[string]int64

	// Err, when set, is returned by every call.
	Err error
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository returns an empty store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	r.nextID++
	user.ID = r.nextID
	if user.Role == "" {
		user.Role = domain.DefaultRole
	}
	user.CreatedAt = time.Now().UTC()

	stored := *user
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	id, ok := r.byEmail[email]
	err := r.Err
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.byID)), nil
}

// Delete removes a user, simulating an account deleted out of band.
func (r *UserRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byID[id]; ok {
		delete(r.byEmail, user.Email)
		delete(r.byID, id)
	}
}
