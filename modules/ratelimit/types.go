package ratelimit

import "time"

// Config holds one rate limit.
type Config struct {
	// RequestsPerWindow is the maximum number of requests allowed in the window.
	RequestsPerWindow int
	// WindowSize is the duration of the sliding window.
	WindowSize time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	// RetryAfter is only set when the request was denied.
	RetryAfter time.Duration
}

// ModuleConfig configures the rate limiting module.
type ModuleConfig struct {
	// RedisAddr disables rate limiting when empty.
	RedisAddr     string
	RedisPassword string
	// Auth limits unauthenticated auth endpoints per client IP.
	Auth Config
	// Write limits state-changing endpoints per authenticated user.
	Write Config
	// KeyPrefix is the prefix for all rate limit keys in Redis.
	KeyPrefix string
}

// DefaultAuthConfig allows 20 auth requests per IP per minute.
func DefaultAuthConfig() Config {
	return Config{
		RequestsPerWindow: 20,
		WindowSize:        time.Minute,
	}
}

// DefaultWriteConfig allows 60 writes per user per minute.
func DefaultWriteConfig() Config {
	return Config{
		RequestsPerWindow: 60,
		WindowSize:        time.Minute,
	}
}

// DefaultModuleConfig returns the default configuration with rate limiting
// disabled.
func DefaultModuleConfig() ModuleConfig {
	return ModuleConfig{
		Auth:      DefaultAuthConfig(),
		Write:     DefaultWriteConfig(),
		KeyPrefix: "blog:ratelimit:",
	}
}
