// Package api exposes the blog over HTTP and serves the notification socket.
package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/youngcruel/blog-multiutente/modules/auth"
	"github.com/youngcruel/blog-multiutente/modules/notify"
	"github.com/youngcruel/blog-multiutente/modules/post"
	"github.com/youngcruel/blog-multiutente/modules/ratelimit"
)

// BasePath prefixes every REST route.
const BasePath = "/blog-multiutente"

// Config configures the HTTP surface.
type Config struct {
	Port int
	// RequireWSAuth refuses sockets that do not present ?token=.
	RequireWSAuth bool
	// BodyLimit caps request bodies in bytes; it must exceed the upload limit.
	BodyLimit int
}

// APIModule is the HTTP API module.
type APIModule struct {
	config   Config
	app      *fiber.App
	authPort auth.AuthPort
	postPort post.PostPort
	media    MediaStore
	limiter  *ratelimit.Middleware
	registry *notify.Registry
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule serving sockets from registry.
func NewModule(config Config, registry *notify.Registry) *APIModule {
	if config.Port == 0 {
		config.Port = 3000
	}
	return &APIModule{
		config:   config,
		registry: registry,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "post"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	case "post":
		m.postPort = post.NewPostAdapter(container)
	}
}

// SetMedia sets the image store (called from main.go).
func (m *APIModule) SetMedia(store MediaStore) {
	m.media = store
}

// SetRateLimiter sets the rate limiting middleware (called from main.go).
func (m *APIModule) SetRateLimiter(limiter *ratelimit.Middleware) {
	m.limiter = limiter
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authPort == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.postPort == nil {
		return fmt.Errorf("post dependency not set")
	}
	if m.media == nil {
		return fmt.Errorf("media store not set")
	}
	if m.registry == nil {
		return fmt.Errorf("notification registry not set")
	}

	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.config.Port)); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.config.Port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{
		"port": m.config.Port,
	}
	if m.registry != nil {
		details["connected_clients"] = m.registry.ConnectionCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: details,
	}
}

func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		BodyLimit:             m.config.BodyLimit,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	m.setupRoutes(app)
	return app
}

// setupRoutes configures all routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	limiter := m.limiter
	if limiter == nil {
		limiter = ratelimit.NewMiddleware(nil, nil)
	}
	requireAuth := AuthMiddleware(m.authPort)

	app.Get("/health", func(c *fiber.Ctx) error {
		details := map[string]any{"module": "api"}
		if m.registry != nil {
			details["connected_clients"] = m.registry.ConnectionCount()
		}
		return c.JSON(HealthResponse{Status: "healthy", Details: details})
	})

	// Notification socket
	app.Use("/ws", m.websocketGuard())
	app.Get("/ws", websocket.New(m.handleWebSocket))

	app.Get("/uploads/:key", m.serveUpload)

	v1 := app.Group(BasePath)

	authRoutes := v1.Group("/auth", limiter.AuthRateLimit())
	authRoutes.Post("/register", m.register)
	authRoutes.Post("/login", m.login)
	authRoutes.Post("/refresh", m.refresh)
	authRoutes.Post("/forgot-password", m.forgotPassword)
	authRoutes.Post("/reset-password/:token", m.resetPassword)

	users := v1.Group("/users", requireAuth)
	users.Get("/me", m.me)
	users.Patch("/me", limiter.WriteRateLimit(), m.updateMe)

	posts := v1.Group("/posts")
	posts.Get("/", m.listPosts)
	posts.Get("/:id", m.getPost)

	write := limiter.WriteRateLimit()
	posts.Post("/", requireAuth, write, m.createPost)
	posts.Patch("/:id", requireAuth, write, m.updatePost)
	posts.Delete("/:id", requireAuth, write, m.deletePost)
	posts.Post("/:id/comments", requireAuth, write, m.addComment)
	posts.Patch("/:id/comments/:commentId", requireAuth, write, m.updateComment)
	posts.Delete("/:id/comments/:commentId", requireAuth, write, m.deleteComment)
	posts.Post("/:id/like", requireAuth, write, m.likePost)
	posts.Delete("/:id/like/remove", requireAuth, write, m.unlikePost)
}
