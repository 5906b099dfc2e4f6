package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAuthEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ACCESS_TTL", "REFRESH_TTL", "JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET",
		"BCRYPT_ROUNDS", "PWD_PEPPER", "AUTH_REVOCATION_ENABLED", "REDIS_ADDR",
		"RATE_LIMIT_WINDOW", "REDIS_DB", "CORS_ORIGIN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearAuthEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "", cfg.Auth.Pepper)
	assert.NotEqual(t, cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret)
	assert.Equal(t, "/api/auth", cfg.Cookie.RefreshPath)
	assert.Equal(t, time.Hour, cfg.Cookie.AccessMaxAge)
	assert.Equal(t, 7*24*time.Hour, cfg.Cookie.RefreshMaxAge)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Nil(t, cfg.CORS.AllowOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("ACCESS_TTL", "30m")
	t.Setenv("REFRESH_TTL", "14d")
	t.Setenv("BCRYPT_ROUNDS", "10")
	t.Setenv("PWD_PEPPER", "pep")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "pep", cfg.Auth.Pepper)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
}

func TestLoad_RejectsSharedSecret(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "same")
	t.Setenv("JWT_REFRESH_SECRET", "same")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidTTL(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("REFRESH_TTL", "sevendays")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RevocationNeedsRedis(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("AUTH_REVOCATION_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "15m", want: 15 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "7d", want: 168 * time.Hour},
		{in: " 2d ", want: 48 * time.Hour},
		{in: "xd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
