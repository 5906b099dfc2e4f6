package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/haras-web/internal/domain"
	apperrors "github.com/spec-kit/haras-web/pkg/util"
)

const identityKey = "auth_identity"

// AuthMiddleware validates the access cookie and attaches the caller identity.
// Each request is evaluated on its own; nothing is cached between requests.
type AuthMiddleware struct {
	tokens   *TokenManager
	cookies  *SessionCookies
	denylist Denylist
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware. denylist may be nil.
func NewAuthMiddleware(tokens *TokenManager, cookies *SessionCookies, denylist Denylist, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, cookies: cookies, denylist: denylist, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw := m.cookies.Access(c)
	if raw == "" {
		return apperrors.ErrUnauthenticated
	}

	claims, err := m.tokens.VerifyAccess(raw)
	if err != nil {
		m.logger.Debug("access token rejected", zap.Error(err))
		return apperrors.ErrSessionInvalid
	}

	identity, err := claims.Identity()
	if err != nil {
		return apperrors.ErrSessionInvalid
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if revoked {
			return apperrors.ErrSessionInvalid
		}
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
