package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/haras-web/internal/config"
	"github.com/spec-kit/haras-web/internal/domain"
)

func cookieApp(cookies *SessionCookies) *fiber.App {
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		cookies.Set(c, domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"})
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/clear", func(c *fiber.Ctx) error {
		cookies.Clear(c)
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/read", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"access": cookies.Access(c), "refresh": cookies.Refresh(c)})
	})
	return app
}

func responseCookies(t *testing.T, app *fiber.App, path string) map[string]*http.Cookie {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	out := map[string]*http.Cookie{}
	for _, ck := range resp.Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestSessionCookies_Set(t *testing.T) {
	cookies := NewSessionCookies(config.CookieConfig{Secure: true})
	got := responseCookies(t, cookieApp(cookies), "/set")

	access := got["haras_access"]
	require.NotNil(t, access)
	assert.Equal(t, "acc", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, int(time.Hour/time.Second), access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

	refresh := got["haras_refresh"]
	require.NotNil(t, refresh)
	assert.Equal(t, "ref", refresh.Value)
	assert.Equal(t, "/api/auth", refresh.Path)
	assert.Equal(t, 7*24*60*60, refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)
	assert.Equal(t, http.SameSiteLaxMode, refresh.SameSite)
}

func TestSessionCookies_ClearMatchesSetPaths(t *testing.T) {
	cookies := NewSessionCookies(config.CookieConfig{Secure: true, Domain: "haras.example"})
	app := cookieApp(cookies)
	set := responseCookies(t, app, "/set")
	cleared := responseCookies(t, app, "/clear")

	for _, name := range []string{"haras_access", "haras_refresh"} {
		s, c := set[name], cleared[name]
		require.NotNil(t, c, name)
		assert.Equal(t, s.Path, c.Path, name)
		assert.Equal(t, s.Domain, c.Domain, name)
		assert.Empty(t, c.Value, name)
		assert.True(t, c.Expires.Before(time.Now()), name)
		assert.True(t, c.HttpOnly, name)
	}
}

func TestSessionCookies_Read(t *testing.T) {
	cookies := NewSessionCookies(config.CookieConfig{})
	app := cookieApp(cookies)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(&http.Cookie{Name: "haras_access", Value: "a1"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "a1", body["access"])
	assert.Equal(t, "", body["refresh"])
}
