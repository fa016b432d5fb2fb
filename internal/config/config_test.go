package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{in: "1d", want: 24 * time.Hour, ok: true},
		{in: "7d", want: 7 * 24 * time.Hour, ok: true},
		{in: "15m", want: 15 * time.Minute, ok: true},
		{in: "xd", ok: false},
		{in: "soon", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDuration(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_EXPIRE", "")
	t.Setenv("JWT_REFRESH_EXPIRE", "")
	t.Setenv("CLIENT_URL", "https://spotly.example.com, http://localhost:3000")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "60000")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshExpire)
	assert.Equal(t, []string{"http://localhost:3000", "https://spotly.example.com"}, cfg.ClientURLs)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.OAuth.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("RESET_DB", "true")
	t.Setenv("OAUTH_ISSUER_URL", "https://accounts.example.com")
	t.Setenv("OAUTH_CLIENT_ID", "spotly")
	t.Setenv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/oauth/callback")

	cfg := Load()

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 2*time.Hour, cfg.JWTExpire)
	assert.True(t, cfg.ResetDB)
	assert.True(t, cfg.OAuth.Enabled())
}

func TestLoad_NonPositiveRateLimitWindow(t *testing.T) {
	for _, v := range []string{"0", "-5"} {
		t.Setenv("RATE_LIMIT_WINDOW_MS", v)
		assert.Equal(t, 15*time.Minute, Load().RateLimitWindow, v)
	}
}
