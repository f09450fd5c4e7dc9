package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/youngcruel/blog-multiutente/modules/api"
	"github.com/youngcruel/blog-multiutente/modules/auth"
	"github.com/youngcruel/blog-multiutente/modules/media"
	"github.com/youngcruel/blog-multiutente/modules/notify"
	"github.com/youngcruel/blog-multiutente/modules/ratelimit"
)

// config holds the process configuration read from the environment.
type config struct {
	HTTPPort        int
	AuthDBPath      string
	PostDBPath      string
	StorageDir      string
	MaxUploadSize   int64
	PublicBaseURL   string
	ShutdownTimeout time.Duration

	JWT auth.JWTConfig

	RequireWSAuth bool
	WSSendBuffer  int

	RateLimit ratelimit.ModuleConfig
}

func loadConfig() config {
	jwt := auth.DefaultJWTConfig()
	jwt.SecretKey = getEnv("JWT_SECRET_KEY", jwt.SecretKey)
	jwt.Issuer = getEnv("JWT_ISSUER", jwt.Issuer)
	jwt.AccessTokenDuration = getEnvDuration("JWT_ACCESS_TTL", jwt.AccessTokenDuration)
	jwt.RefreshTokenDuration = getEnvDuration("JWT_REFRESH_TTL", jwt.RefreshTokenDuration)

	rl := ratelimit.DefaultModuleConfig()
	rl.RedisAddr = getEnv("REDIS_ADDR", "")
	rl.RedisPassword = getEnv("REDIS_PASSWORD", "")
	rl.Auth.RequestsPerWindow = getEnvInt("RATE_LIMIT_AUTH_REQUESTS", rl.Auth.RequestsPerWindow)
	rl.Auth.WindowSize = getEnvDuration("RATE_LIMIT_AUTH_WINDOW", rl.Auth.WindowSize)
	rl.Write.RequestsPerWindow = getEnvInt("RATE_LIMIT_WRITE_REQUESTS", rl.Write.RequestsPerWindow)
	rl.Write.WindowSize = getEnvDuration("RATE_LIMIT_WRITE_WINDOW", rl.Write.WindowSize)

	return config{
		HTTPPort:        getEnvInt("HTTP_PORT", 3000),
		AuthDBPath:      getEnv("AUTH_DB_PATH", "auth.db"),
		PostDBPath:      getEnv("POST_DB_PATH", "posts.db"),
		StorageDir:      getEnv("STORAGE_DIR", "/tmp/blog-multiutente"),
		MaxUploadSize:   getEnvInt64("MAX_UPLOAD_SIZE", media.DefaultMaxUploadSize),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		JWT:             jwt,
		RequireWSAuth:   getEnvBool("WS_REQUIRE_AUTH", true),
		WSSendBuffer:    getEnvInt("WS_SEND_BUFFER", notify.DefaultSendBuffer),
		RateLimit:       rl,
	}
}

// resetLinkPrefix is prepended to password reset tokens in emailed links.
func (c config) resetLinkPrefix() string {
	return c.PublicBaseURL + api.BasePath + "/auth/reset-password/"
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvInt64 returns environment variable as int64 or default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int64 value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
