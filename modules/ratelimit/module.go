package ratelimit

import (
	"context"
	"log"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Module provides Redis-backed rate limiting middleware.
type Module struct {
	config     ModuleConfig
	client     *redis.Client
	middleware *Middleware
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new rate limiting module. The middleware it hands out
// is usable before Start and passes every request until Redis is configured.
func NewModule(config ModuleConfig) *Module {
	m := &Module{config: config}
	if config.RedisAddr == "" {
		m.middleware = NewMiddleware(nil, nil)
		return m
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
	})
	m.middleware = NewMiddleware(
		NewSlidingWindowLimiter(m.client, config.Auth, config.KeyPrefix+"auth:"),
		NewSlidingWindowLimiter(m.client, config.Write, config.KeyPrefix+"write:"),
	)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limiter"
}

// Start checks the Redis connection. An unreachable Redis is logged and
// requests are admitted until it comes back.
func (m *Module) Start(ctx context.Context) error {
	if m.client == nil {
		log.Println("[rate-limiter] Module started (disabled: REDIS_ADDR not set)")
		return nil
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		log.Printf("[rate-limiter] Warning: Redis at %s unreachable, failing open: %v", m.config.RedisAddr, err)
		return nil
	}
	log.Printf("[rate-limiter] Connected to Redis at %s", m.config.RedisAddr)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[rate-limiter] Error closing Redis connection: %v", err)
		}
	}
	log.Println("[rate-limiter] Module stopped")
	return nil
}

// Health reports Redis reachability. Rate limiting failing open keeps the
// module healthy either way.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: "disabled",
		}
	}
	redisUp := m.client.Ping(ctx).Err() == nil
	message := "operational"
	if !redisUp {
		message = "redis unreachable, failing open"
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: message,
		Details: map[string]any{
			"redis": m.config.RedisAddr,
			"up":    redisUp,
		},
	}
}

// Middleware returns the rate limiting middleware.
func (m *Module) Middleware() *Middleware {
	return m.middleware
}
