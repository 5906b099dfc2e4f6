package http_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	httptransport "github.com/spec-kit/haras-web/internal/api/http"
	"github.com/spec-kit/haras-web/internal/config"
	"github.com/spec-kit/haras-web/internal/observability"
	apperrors "github.com/spec-kit/haras-web/pkg/util"
)

func newMiddlewareApp(t *testing.T, cfg config.AppConfig) (*fiber.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	app := httptransport.NewApp(cfg, logger)
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		Timeout: 50 * time.Millisecond,
	})
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })
	app.Get("/deadline", func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		<-c.UserContext().Done()
		return apperrors.NewInternalError(context.Cause(c.UserContext()))
	})
	app.Post("/echo", func(c *fiber.Ctx) error { return c.Send(c.Body()) })
	return app, logs
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorMiddleware_RecoversPanics(t *testing.T) {
	app, logs := newMiddlewareApp(t, config.AppConfig{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/panic", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, apperrors.CodeInternal, body["code"])
	assert.Equal(t, apperrors.MsgInternal, body["message"])
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	app, logs := newMiddlewareApp(t, config.AppConfig{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/deadline", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestErrorHandler_LoggedPathSurvivesLaterRequests(t *testing.T) {
	app, logs := newMiddlewareApp(t, config.AppConfig{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/deadline", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/echo", strings.NewReader("hi")), -1)
	require.NoError(t, err)
	resp.Body.Close()

	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/deadline", entries[0].ContextMap()["path"])
	assert.Equal(t, fiber.MethodGet, entries[0].ContextMap()["method"])
}

// The body limit is enforced by fasthttp while reading the request, so it is
// only observable over a real connection.
func TestBodyLimit(t *testing.T) {
	app, _ := newMiddlewareApp(t, config.AppConfig{BodyLimitBytes: 16})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	url := "http://" + ln.Addr().String() + "/echo"

	resp, err := http.Post(url, "text/plain", strings.NewReader("small"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(url, "text/plain", strings.NewReader(strings.Repeat("a", 64)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
