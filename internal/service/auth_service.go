package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/haras-web/internal/auth"
	"github.com/spec-kit/haras-web/internal/domain"
	"github.com/spec-kit/haras-web/internal/events"
	"github.com/spec-kit/haras-web/internal/repository"
	apperrors "github.com/spec-kit/haras-web/pkg/util"
)

// AuthService coordinates signup, login, refresh and logout flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenManager
	denylist   auth.Denylist
	dispatcher events.Dispatcher
	logger     *zap.Logger

	// dummyDigest is verified against when the email is unknown so that both
	// login failure paths cost one bcrypt comparison.
	dummyDigest string
}

// AuthDependencies encapsulates collaborators for the auth service.
// Denylist and Dispatcher are optional.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenManager
	Denylist   auth.Denylist
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// SignupInput is an already validated signup request.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// NewAuthService builds the service.
func NewAuthService(ctx context.Context, deps AuthDependencies) (*AuthService, error) {
	if deps.UserRepo == nil || deps.Hasher == nil || deps.Tokens == nil {
		return nil, errors.New("auth service requires user repository, hasher and token manager")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dummy, err := deps.Hasher.Hash(ctx, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	return &AuthService{
		users:       deps.UserRepo,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		denylist:    deps.Denylist,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		dummyDigest: dummy,
	}, nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new account and mints its first token pair.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, domain.TokenPair, error) {
	hash, err := s.hasher.Hash(ctx, in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, domain.TokenPair{}, apperrors.NewInvalidInput("password", apperrors.MsgPasswordTooLong)
	}
	if err != nil {
		return nil, domain.TokenPair{}, s.internal("hash password", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.TokenPair{}, apperrors.ErrEmailTaken
		}
		return nil, domain.TokenPair{}, s.internal("create user", err)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, domain.TokenPair{}, s.internal("issue tokens", err)
	}

	s.publish(ctx, events.NewEvent(events.EventUserSignedUp, user.ID, events.UserSignedUpPayload{
		Role:        user.Role,
		EmailDomain: emailDomain(user.Email),
	}))
	return user, pair, nil
}

// Login authenticates by email and password. An unknown email and a wrong
// password yield the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	normalized := NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(ctx, password, s.dummyDigest)
			s.loginFailed(ctx, normalized)
			return nil, domain.TokenPair{}, apperrors.ErrInvalidCredentials
		}
		return nil, domain.TokenPair{}, s.internal("lookup user by email", err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, domain.TokenPair{}, s.internal("verify password", ctxErr)
		}
		s.loginFailed(ctx, normalized)
		return nil, domain.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, domain.TokenPair{}, s.internal("issue tokens", err)
	}

	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, user.ID, nil))
	return user, pair, nil
}

// Refresh validates a refresh token and rotates the token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, apperrors.ErrNoRefreshToken
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", zap.Error(err))
		return domain.TokenPair{}, apperrors.ErrRefreshInvalid
	}
	userID, err := auth.SubjectID(claims.RegisteredClaims)
	if err != nil {
		return domain.TokenPair{}, apperrors.ErrRefreshInvalid
	}

	// With a denylist each refresh token rotates at most once, even under
	// concurrent replay.
	if s.denylist != nil {
		consumed, err := s.denylist.Consume(ctx, claims.ID, claims.ExpiresAt.Time)
		if err != nil {
			return domain.TokenPair{}, s.internal("consume refresh token", err)
		}
		if !consumed {
			return domain.TokenPair{}, apperrors.ErrRefreshInvalid
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TokenPair{}, apperrors.ErrUserGone
		}
		return domain.TokenPair{}, s.internal("lookup user by id", err)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return domain.TokenPair{}, s.internal("issue tokens", err)
	}

	s.publish(ctx, events.NewEvent(events.EventSessionRefreshed, user.ID, nil))
	return pair, nil
}

// Logout revokes the presented access token when a denylist is configured.
// It never fails: clearing the cookies is what ends the session.
func (s *AuthService) Logout(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return
	}

	var userID int64
	if id, err := auth.SubjectID(claims.RegisteredClaims); err == nil {
		userID = id
	}
	if s.denylist != nil {
		if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			s.logger.Warn("failed to revoke access token", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	s.publish(ctx, events.NewEvent(events.EventLoggedOut, userID, nil))
}

// Me loads the account of the authenticated caller.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserGone
		}
		return nil, s.internal("lookup user by id", err)
	}
	return user, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string) {
	s.publish(ctx, events.NewEvent(events.EventLoginFailed, 0, events.LoginFailedPayload{
		EmailDomain: emailDomain(email),
	}))
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (s *AuthService) internal(op string, err error) error {
	s.logger.Error("auth operation failed", zap.String("op", op), zap.Error(err))
	return apperrors.NewInternalError(fmt.Errorf("%s: %w", op, err))
}

func emailDomain(email string) string {
	if at := strings.LastIndexByte(email, '@'); at >= 0 {
		return email[at+1:]
	}
	return ""
}
