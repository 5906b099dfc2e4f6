package domain

import "time"

// Identity is the authenticated caller attached to a request by the auth gate.
type Identity struct {
	ID   int64
	Role string
	Name string
}

// TokenPair bundles a freshly minted access and refresh token.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
