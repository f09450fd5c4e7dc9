package ratelimit

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocal is the fiber.Ctx local holding the authenticated user id.
const UserIDLocal = "user_id"

// Limiter admits or denies a request identified by key.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	Config() Config
}

// Middleware provides rate limiting middleware for Fiber. A nil limiter
// disables the corresponding middleware.
type Middleware struct {
	authLimiter  Limiter
	writeLimiter Limiter
}

// NewMiddleware creates a new rate limiting middleware.
func NewMiddleware(authLimiter, writeLimiter Limiter) *Middleware {
	return &Middleware{
		authLimiter:  authLimiter,
		writeLimiter: writeLimiter,
	}
}

// AuthRateLimit limits auth endpoints by client IP.
func (m *Middleware) AuthRateLimit() fiber.Handler {
	return m.limit(m.authLimiter, func(c *fiber.Ctx) string {
		return "ip:" + c.IP()
	})
}

// WriteRateLimit limits state-changing endpoints by user id, falling back to
// the client IP when no user is authenticated.
func (m *Middleware) WriteRateLimit() fiber.Handler {
	return m.limit(m.writeLimiter, func(c *fiber.Ctx) string {
		if userID, ok := c.Locals(UserIDLocal).(string); ok && userID != "" {
			return "user:" + userID
		}
		return "ip:" + c.IP()
	})
}

func (m *Middleware) limit(limiter Limiter, key func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil || limiter == nil {
			return c.Next()
		}

		result, err := limiter.Allow(c.UserContext(), key(c))
		if err != nil {
			// Limiter errors admit the request.
			log.Printf("[ratelimit] Warning: limiter unavailable: %v", err)
			c.Set("X-RateLimit-Error", "unavailable")
			return c.Next()
		}

		setRateLimitHeaders(c, result, limiter.Config().RequestsPerWindow)
		if !result.Allowed {
			return sendRateLimitExceeded(c, result)
		}
		return c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(c *fiber.Ctx, result *Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// sendRateLimitExceeded sends a 429 Too Many Requests response.
func sendRateLimitExceeded(c *fiber.Ctx, result *Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "Too Many Requests",
		"message":     fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
		"retry_after": retryAfter,
	})
}
