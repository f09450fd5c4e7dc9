package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
	"github.com/youngcruel/blog-multiutente/modules/api"
	"github.com/youngcruel/blog-multiutente/modules/auth"
	"github.com/youngcruel/blog-multiutente/modules/media"
	"github.com/youngcruel/blog-multiutente/modules/notify"
	"github.com/youngcruel/blog-multiutente/modules/post"
	"github.com/youngcruel/blog-multiutente/modules/ratelimit"
)

func main() {
	cfg := loadConfig()

	log.Println("=== Blog Multiutente ===")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Storage Dir: %s", cfg.StorageDir)
	log.Printf("Max Upload Size: %d bytes", cfg.MaxUploadSize)

	// Create mono application with embedded NATS JetStream
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithJetStreamStorageDir(cfg.StorageDir),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Uploaded images live in a JetStream object store bucket.
	storagePlugin, err := fsjetstream.New(fsjetstream.Config{
		Buckets: []fsjetstream.BucketConfig{
			{
				Name:        media.BucketName,
				Description: "Post and profile images",
				MaxBytes:    1024 * 1024 * 1024,
				Storage:     fsjetstream.FileStorage,
			},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create storage plugin: %v", err)
	}
	if err := app.RegisterPlugin(storagePlugin, "storage"); err != nil {
		log.Fatalf("Failed to register storage plugin: %v", err)
	}

	// Create modules
	authModule := auth.NewModule(auth.Config{
		DBPath:       cfg.AuthDBPath,
		JWT:          cfg.JWT,
		ResetBaseURL: cfg.resetLinkPrefix(),
	})
	mediaModule := media.NewModule(cfg.MaxUploadSize, app.Logger())
	postModule := post.NewModule(cfg.PostDBPath)

	registry := notify.NewRegistry(app.Logger(), cfg.WSSendBuffer)
	notifyModule := notify.NewModule(registry, app.Logger())

	rateLimitModule := ratelimit.NewModule(cfg.RateLimit)

	apiModule := api.NewModule(api.Config{
		Port:          cfg.HTTPPort,
		RequireWSAuth: cfg.RequireWSAuth,
		BodyLimit:     int(cfg.MaxUploadSize) + 1<<20,
	}, registry)

	// Wire up dependencies that are not exposed through service containers
	apiModule.SetMedia(mediaModule)
	apiModule.SetRateLimiter(rateLimitModule.Middleware())

	// Register modules
	// - auth, media: no module dependencies
	// - post: depends on auth, emits PostLiked/PostCommented
	// - notify: consumes post events and fans them out to sockets
	// - api: depends on auth and post
	app.Register(authModule)
	app.Register(mediaModule)
	app.Register(postModule)
	app.Register(notifyModule)
	app.Register(rateLimitModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config) {
	base := api.BasePath
	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d%s", cfg.HTTPPort, base)
	log.Println("Endpoints:")
	log.Println("  GET    /health                              - Health check")
	log.Println("  GET    /ws                                  - Notification socket (join with your user id)")
	log.Println("  GET    /uploads/:key                        - Uploaded image")
	log.Printf("  POST   %s/auth/register", base)
	log.Printf("  POST   %s/auth/login", base)
	log.Printf("  POST   %s/auth/refresh", base)
	log.Printf("  POST   %s/auth/forgot-password", base)
	log.Printf("  POST   %s/auth/reset-password/:token", base)
	log.Printf("  GET    %s/users/me                 (auth)", base)
	log.Printf("  PATCH  %s/users/me                 (auth)", base)
	log.Printf("  GET    %s/posts", base)
	log.Printf("  GET    %s/posts/:id", base)
	log.Printf("  POST   %s/posts                    (auth)", base)
	log.Printf("  PATCH  %s/posts/:id                (auth, owner)", base)
	log.Printf("  DELETE %s/posts/:id                (auth, owner)", base)
	log.Printf("  POST   %s/posts/:id/comments       (auth)", base)
	log.Printf("  PATCH  %s/posts/:id/comments/:cid  (auth, author)", base)
	log.Printf("  DELETE %s/posts/:id/comments/:cid  (auth, author)", base)
	log.Printf("  POST   %s/posts/:id/like           (auth)", base)
	log.Printf("  DELETE %s/posts/:id/like/remove    (auth)", base)
	if cfg.RateLimit.RedisAddr == "" {
		log.Println("Rate limiting: disabled (REDIS_ADDR not set)")
	} else {
		log.Printf("Rate limiting: redis at %s", cfg.RateLimit.RedisAddr)
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")
}
