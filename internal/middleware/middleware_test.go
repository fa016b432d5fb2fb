package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotly/internal/auth"
	apperrors "spotly/internal/errors"
	"spotly/internal/model"
)

type fakeUsers map[uuid.UUID]*model.User

func (f fakeUsers) Authenticate(_ context.Context, claims *auth.Claims) (*model.User, error) {
	id, err := claims.UserUUID()
	if err != nil {
		return nil, apperrors.InvalidCredential("User not found. Token is invalid.")
	}
	user, ok := f[id]
	if !ok {
		return nil, apperrors.InvalidCredential("User not found. Token is invalid.")
	}
	if !user.IsActive {
		return nil, apperrors.AccountDisabled("Your account has been deactivated")
	}
	return user, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if appErr, ok := apperrors.As(err); ok {
			_ = c.JSON(appErr.StatusCode(), map[string]string{"message": appErr.Message})
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, map[string]any{"message": he.Message})
			return
		}
		_ = c.NoContent(http.StatusInternalServerError)
	}
	return e
}

type gateFixture struct {
	e        *echo.Echo
	jwt      *auth.JWTService
	user     *model.User
	admin    *model.User
	disabled *model.User
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	f := &gateFixture{
		e:        newTestEcho(),
		jwt:      auth.NewJWTService("access", "refresh", time.Hour, 2*time.Hour),
		user:     &model.User{ID: uuid.New(), Email: "u@x.com", Role: model.RoleUser, IsActive: true},
		admin:    &model.User{ID: uuid.New(), Email: "a@x.com", Role: model.RoleAdmin, IsActive: true},
		disabled: &model.User{ID: uuid.New(), Email: "d@x.com", Role: model.RoleAdmin, IsActive: false},
	}
	gate := NewGate(f.jwt, fakeUsers{f.user.ID: f.user, f.admin.ID: f.admin, f.disabled.ID: f.disabled})

	whoami := func(c echo.Context) error {
		if u := CurrentUser(c); u != nil {
			return c.String(http.StatusOK, u.Email)
		}
		return c.String(http.StatusOK, "anonymous")
	}
	f.e.GET("/private", whoami, gate.Mandatory())
	f.e.GET("/public", whoami, gate.Optional())
	f.e.GET("/admin", whoami, gate.Mandatory(), gate.Require(auth.PermManageUsers))
	return f
}

func (f *gateFixture) token(t *testing.T, u *model.User) string {
	t.Helper()
	tok, err := f.jwt.GenerateAccessToken(u)
	require.NoError(t, err)
	return tok
}

func (f *gateFixture) do(path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestGate_Mandatory(t *testing.T) {
	f := newGateFixture(t)
	refresh, err := f.jwt.GenerateRefreshToken(f.user)
	require.NoError(t, err)
	ghost := &model.User{ID: uuid.New(), Email: "ghost@x.com", Role: model.RoleUser}

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantBody      string
	}{
		{"valid token", "Bearer " + f.token(t, f.user), http.StatusOK, "u@x.com"},
		{"no header", "", http.StatusUnauthorized, "No token provided"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "No token provided"},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, "Invalid token. Please login again."},
		{"refresh token cannot authenticate", "Bearer " + refresh, http.StatusUnauthorized, "Invalid token"},
		{"deleted user", "Bearer " + f.token(t, ghost), http.StatusUnauthorized, "User not found"},
		{"deactivated user", "Bearer " + f.token(t, f.disabled), http.StatusUnauthorized, "deactivated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do("/private", tt.authorization)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestGate_Optional(t *testing.T) {
	f := newGateFixture(t)

	tests := []struct {
		name          string
		authorization string
		want          string
	}{
		{"valid token", "Bearer " + f.token(t, f.user), "u@x.com"},
		{"no header", "", "anonymous"},
		{"garbage token", "Bearer nope", "anonymous"},
		{"deactivated user", "Bearer " + f.token(t, f.disabled), "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do("/public", tt.authorization)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestGate_Require(t *testing.T) {
	f := newGateFixture(t)

	rec := f.do("/admin", "Bearer "+f.token(t, f.admin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do("/admin", "Bearer "+f.token(t, f.user))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You do not have permission to perform this action")

	rec = f.do("/admin", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	window time.Duration
	err    error
}

func (m *memCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = window
	if m.err != nil {
		return 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	counter := &memCounter{}
	store := &windowStore{counter: counter, window: time.Minute, max: 2, timeout: time.Second, now: func() time.Time { return now }}

	e := newTestEcho()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, rateLimit(store))

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"))

	// next window
	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))

	// fail open
	counter.err = errors.New("redis down")
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	}
}

func TestRateLimit_SubMillisecondWindowUsesDefault(t *testing.T) {
	for _, window := range []time.Duration{0, -time.Second, 500 * time.Microsecond} {
		counter := &memCounter{}
		e := newTestEcho()
		e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RateLimit(counter, window, 5))

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code, "window %v", window)
		assert.Equal(t, DefaultRateLimitWindow, counter.window)
	}
}
