package domain

import "time"

// DefaultRole is assigned to every account created through signup.
const DefaultRole = "user"

// User is the domain model for a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
