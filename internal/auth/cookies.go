package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haras-web/internal/config"
	"github.com/spec-kit/haras-web/internal/domain"
)

// SessionCookies stores the access and refresh tokens as HTTP-only cookies.
// The refresh cookie is scoped to the auth endpoint group so it is only sent
// to the refresh endpoint.
type SessionCookies struct {
	cfg config.CookieConfig
}

// NewSessionCookies constructs the cookie manager.
func NewSessionCookies(cfg config.CookieConfig) *SessionCookies {
	if cfg.AccessName == "" {
		cfg.AccessName = "haras_access"
	}
	if cfg.RefreshName == "" {
		cfg.RefreshName = "haras_refresh"
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = "/api/auth"
	}
	if cfg.AccessMaxAge <= 0 {
		cfg.AccessMaxAge = time.Hour
	}
	if cfg.RefreshMaxAge <= 0 {
		cfg.RefreshMaxAge = 7 * 24 * time.Hour
	}
	return &SessionCookies{cfg: cfg}
}

// Set writes both session cookies.
func (s *SessionCookies) Set(c *fiber.Ctx, pair domain.TokenPair) {
	c.Cookie(s.cookie(s.cfg.AccessName, pair.AccessToken, "/", s.cfg.AccessMaxAge))
	c.Cookie(s.cookie(s.cfg.RefreshName, pair.RefreshToken, s.cfg.RefreshPath, s.cfg.RefreshMaxAge))
}

// Clear expires both session cookies. Browsers only drop a cookie when name,
// path and domain match the ones it was set with.
func (s *SessionCookies) Clear(c *fiber.Ctx) {
	for _, ck := range []*fiber.Cookie{
		s.cookie(s.cfg.AccessName, "", "/", 0),
		s.cookie(s.cfg.RefreshName, "", s.cfg.RefreshPath, 0),
	} {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.Cookie(ck)
	}
}

// Access returns the access token cookie value, or "" when absent.
func (s *SessionCookies) Access(c *fiber.Ctx) string {
	return c.Cookies(s.cfg.AccessName)
}

// Refresh returns the refresh token cookie value, or "" when absent.
func (s *SessionCookies) Refresh(c *fiber.Ctx) string {
	return c.Cookies(s.cfg.RefreshName)
}

func (s *SessionCookies) cookie(name, value, path string, maxAge time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   s.cfg.Domain,
		MaxAge:   int(maxAge / time.Second),
		Secure:   s.cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
