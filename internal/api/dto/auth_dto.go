package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/haras-web/internal/domain"
)

// SignupRequest payload for new accounts. Fields are validated in declaration order.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// Normalize trims the name and email. The password is taken as typed.
func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// SessionResponse is returned by signup and login.
type SessionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
	Role    string `json:"role"`
}

// MessageResponse is a bare success acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// MeResponse wraps the current user.
type MeResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// NewUserResponse drops the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// StatusResponse reports store reachability.
type StatusResponse struct {
	Status     string `json:"status"`
	UsersCount *int64 `json:"usersCount,omitempty"`
	Service    string `json:"service"`
	Version    string `json:"version,omitempty"`
	Message    string `json:"message,omitempty"`
}
