package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/haras-web/internal/domain"
)

var (
	// ErrTokenInvalid covers bad signatures, malformed tokens and unexpected claims.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is returned when the current time is at or after exp.
	ErrTokenExpired = errors.New("token expired")
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. It only identifies the subject.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and validates access and refresh JWTs. Each kind has its
// own secret so one cannot be used to forge the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...TokenOption) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	tm := &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// IssueAccess signs an access token carrying the user's id, role and name.
func (tm *TokenManager) IssueAccess(user *domain.User) (string, time.Time, error) {
	registered := tm.registered(user.ID, tm.accessTTL)
	claims := &AccessClaims{Role: user.Role, Name: user.Name, RegisteredClaims: registered}
	return tm.sign(claims, tm.accessSecret, registered.ExpiresAt.Time)
}

// IssueRefresh signs a refresh token carrying only the user's id.
func (tm *TokenManager) IssueRefresh(user *domain.User) (string, time.Time, error) {
	registered := tm.registered(user.ID, tm.refreshTTL)
	claims := &RefreshClaims{RegisteredClaims: registered}
	return tm.sign(claims, tm.refreshSecret, registered.ExpiresAt.Time)
}

// IssuePair mints a fresh access and refresh token for the user.
func (tm *TokenManager) IssuePair(user *domain.User) (domain.TokenPair, error) {
	access, accessExp, err := tm.IssueAccess(user)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := tm.IssueRefresh(user)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess validates an access token against the access secret.
func (tm *TokenManager) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tm.parse(tokenStr, claims, tm.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token against the refresh secret.
func (tm *TokenManager) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := tm.parse(tokenStr, claims, tm.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// Identity converts access claims into the request identity.
func (c *AccessClaims) Identity() (domain.Identity, error) {
	id, err := SubjectID(c.RegisteredClaims)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ID: id, Role: c.Role, Name: c.Name}, nil
}

// SubjectID parses the numeric user id stored in sub.
func SubjectID(claims jwt.RegisteredClaims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrTokenInvalid, claims.Subject)
	}
	return id, nil
}

func (tm *TokenManager) registered(userID int64, ttl time.Duration) jwt.RegisteredClaims {
	now := tm.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (tm *TokenManager) sign(claims jwt.Claims, secret []byte, expiresAt time.Time) (string, time.Time, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (tm *TokenManager) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
