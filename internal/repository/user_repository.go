package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/haras-web/internal/domain"
)

const uniqueViolation = "23505"

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrStoreUnavailable is returned when no database connection was configured.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// DBTX is the subset of pgx used by repositories; *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation. A nil pool yields a
// repository whose calls fail with ErrStoreUnavailable.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	if pool == nil {
		return &userRepository{}
	}
	return &userRepository{db: pool}
}

func newUserRepository(db DBTX) *userRepository {
	return &userRepository{db: db}
}

// Create inserts the user and fills in the store-assigned id, role and created_at.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}

	const query = `
        INSERT INTO users (name, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, role, created_at`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.Role, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, created_at
        FROM users WHERE id=$1`

	return r.getOne(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, created_at
        FROM users WHERE email=$1`

	return r.getOne(ctx, query, email)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrStoreUnavailable
	}

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}

	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}
