package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"spotly/internal/logging"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// DefaultRateLimitWindow replaces windows shorter than a millisecond.
const DefaultRateLimitWindow = 15 * time.Minute

// WindowCounter increments a counter that expires after window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// windowStore is a fixed-window echo rate limiter store. When the counter
// backend is unavailable every request is allowed.
type windowStore struct {
	counter WindowCounter
	window  time.Duration
	max     int64
	timeout time.Duration
	now     func() time.Time
}

func (s *windowStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	slot := s.now().UnixMilli() / s.window.Milliseconds()
	n, err := s.counter.IncrWindow(ctx, fmt.Sprintf("ratelimit:%s:%d", identifier, slot), s.window)
	if err != nil {
		logging.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		return true, nil
	}
	return n <= s.max, nil
}

// RateLimit allows at most max requests per client IP in each fixed window.
func RateLimit(counter WindowCounter, window time.Duration, max int) echo.MiddlewareFunc {
	if window < time.Millisecond {
		window = DefaultRateLimitWindow
	}
	return rateLimit(&windowStore{
		counter: counter,
		window:  window,
		max:     int64(max),
		timeout: 250 * time.Millisecond,
		now:     time.Now,
	})
}

func rateLimit(store echomw.RateLimiterStore) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, rateLimitMessage)
		},
	})
}
