package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

// countingLimiter admits the first limit requests per key.
type countingLimiter struct {
	limit  int
	counts map[string]int
	err    error
}

func newCountingLimiter(limit int) *countingLimiter {
	return &countingLimiter{limit: limit, counts: make(map[string]int)}
}

func (l *countingLimiter) Allow(_ context.Context, key string) (*Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.counts[key]++
	if l.counts[key] > l.limit {
		return &Result{Allowed: false, ResetAt: time.Now().Add(time.Minute), RetryAfter: 30 * time.Second}, nil
	}
	return &Result{Allowed: true, Remaining: l.limit - l.counts[key], ResetAt: time.Now().Add(time.Minute)}, nil
}

func (l *countingLimiter) Config() Config {
	return Config{RequestsPerWindow: l.limit, WindowSize: time.Minute}
}

func doRequest(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("POST", "/test", nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return resp.StatusCode
}

func TestMiddleware_AuthRateLimit(t *testing.T) {
	app := fiber.New()
	middleware := NewMiddleware(newCountingLimiter(2), nil)
	app.Post("/test", middleware.AuthRateLimit(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	for i := 0; i < 2; i++ {
		if status := doRequest(t, app); status != fiber.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, status)
		}
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/test", nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %q, want %q", got, "30")
	}
	if got := resp.Header.Get("X-RateLimit-Limit"); got != "2" {
		t.Errorf("X-RateLimit-Limit = %q, want %q", got, "2")
	}
}

func TestMiddleware_WriteRateLimitKeysByUser(t *testing.T) {
	limiter := newCountingLimiter(1)
	app := fiber.New()
	middleware := NewMiddleware(nil, limiter)
	app.Post("/test", func(c *fiber.Ctx) error {
		c.Locals(UserIDLocal, c.Get("X-User"))
		return c.Next()
	}, middleware.WriteRateLimit(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	for _, user := range []string{"alice", "bob"} {
		req := httptest.NewRequest("POST", "/test", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("user %s: expected status 200, got %d", user, resp.StatusCode)
		}
	}

	if limiter.counts["user:alice"] != 1 || limiter.counts["user:bob"] != 1 {
		t.Errorf("unexpected limiter keys: %v", limiter.counts)
	}
}

func TestMiddleware_FailsOpen(t *testing.T) {
	limiter := newCountingLimiter(1)
	limiter.err = errors.New("connection refused")

	app := fiber.New()
	app.Post("/test", NewMiddleware(limiter, nil).AuthRateLimit(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	for i := 0; i < 3; i++ {
		if status := doRequest(t, app); status != fiber.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, status)
		}
	}
}

func TestModule_DisabledWithoutRedis(t *testing.T) {
	module := NewModule(DefaultModuleConfig())
	if err := module.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer module.Stop(context.Background())

	app := fiber.New()
	app.Post("/test", module.Middleware().AuthRateLimit(), module.Middleware().WriteRateLimit(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	for i := 0; i < 50; i++ {
		if status := doRequest(t, app); status != fiber.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, status)
		}
	}

	if health := module.Health(context.Background()); !health.Healthy || health.Message != "disabled" {
		t.Errorf("Health() = %+v, want healthy and disabled", health)
	}
}
