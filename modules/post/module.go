package post

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/youngcruel/blog-multiutente/events"
	"github.com/youngcruel/blog-multiutente/modules/auth"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostModule provides posts, comments and likes and emits interaction events.
type PostModule struct {
	dbPath    string
	repo      *Repository
	service   *Service
	users     UserDirectory
	publisher *busPublisher
}

// Compile-time interface checks.
var _ mono.Module = (*PostModule)(nil)
var _ mono.ServiceProviderModule = (*PostModule)(nil)
var _ mono.DependentModule = (*PostModule)(nil)
var _ mono.EventBusAwareModule = (*PostModule)(nil)
var _ mono.EventEmitterModule = (*PostModule)(nil)
var _ mono.HealthCheckableModule = (*PostModule)(nil)

// NewModule creates a new PostModule backed by the sqlite file at dbPath.
func NewModule(dbPath string) *PostModule {
	if dbPath == "" {
		dbPath = "posts.db"
	}
	return &PostModule{
		dbPath:    dbPath,
		publisher: &busPublisher{},
	}
}

// Name returns the module name.
func (m *PostModule) Name() string {
	return "post"
}

// Dependencies returns the modules whose services this module uses.
func (m *PostModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives the auth service container.
func (m *PostModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.users = auth.NewAuthAdapter(container)
	}
}

// SetEventBus receives the application event bus.
func (m *PostModule) SetEventBus(bus mono.EventBus) {
	m.publisher.bus = bus
}

// EmitEvents declares the events published by this module.
func (m *PostModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.PostLikedV1.ToBase(),
		events.PostCommentedV1.ToBase(),
	}
}

// Start opens the post database and builds the service.
func (m *PostModule) Start(_ context.Context) error {
	if m.users == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.publisher.bus == nil {
		log.Println("[post] Warning: eventBus not set, notifications will not be published")
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	m.repo = NewRepository(db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	m.service = NewService(m.repo, m.users, m.publisher)

	log.Printf("[post] Module started (database: %s, depends on: auth)", m.dbPath)
	return nil
}

// Stop closes the database.
func (m *PostModule) Stop(_ context.Context) error {
	if m.repo != nil {
		if err := m.repo.Close(); err != nil {
			log.Printf("[post] Error closing database: %v", err)
		}
	}
	log.Println("[post] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *PostModule) Health(_ context.Context) mono.HealthStatus {
	if m.repo == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}
	if err := m.repo.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database":  m.dbPath,
			"event_bus": m.publisher.bus != nil,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *PostModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(container, "create-post", json.Unmarshal, json.Marshal, m.handleCreatePost); err != nil {
		return fmt.Errorf("failed to register create-post service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "list-posts", json.Unmarshal, json.Marshal, m.handleListPosts); err != nil {
		return fmt.Errorf("failed to register list-posts service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "get-post", json.Unmarshal, json.Marshal, m.handleGetPost); err != nil {
		return fmt.Errorf("failed to register get-post service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "update-post", json.Unmarshal, json.Marshal, m.handleUpdatePost); err != nil {
		return fmt.Errorf("failed to register update-post service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "delete-post", json.Unmarshal, json.Marshal, m.handleDeletePost); err != nil {
		return fmt.Errorf("failed to register delete-post service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "add-comment", json.Unmarshal, json.Marshal, m.handleAddComment); err != nil {
		return fmt.Errorf("failed to register add-comment service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "update-comment", json.Unmarshal, json.Marshal, m.handleUpdateComment); err != nil {
		return fmt.Errorf("failed to register update-comment service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "delete-comment", json.Unmarshal, json.Marshal, m.handleDeleteComment); err != nil {
		return fmt.Errorf("failed to register delete-comment service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "like-post", json.Unmarshal, json.Marshal, m.handleLikePost); err != nil {
		return fmt.Errorf("failed to register like-post service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "unlike-post", json.Unmarshal, json.Marshal, m.handleUnlikePost); err != nil {
		return fmt.Errorf("failed to register unlike-post service: %w", err)
	}

	log.Printf("[post] Registered services: create-post, list-posts, get-post, update-post, delete-post, add-comment, update-comment, delete-comment, like-post, unlike-post")
	return nil
}

func (m *PostModule) handleCreatePost(ctx context.Context, req CreatePostRequest, _ *mono.Msg) (PostView, error) {
	view, err := m.service.CreatePost(ctx, req.AuthorID, CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Image:   req.Image,
	})
	if err != nil {
		return PostView{}, err
	}
	return *view, nil
}

func (m *PostModule) handleListPosts(ctx context.Context, req ListPostsRequest, _ *mono.Msg) (PostPage, error) {
	page, err := m.service.ListPosts(ctx, req.Page, req.Limit)
	if err != nil {
		return PostPage{}, err
	}
	return *page, nil
}

func (m *PostModule) handleGetPost(ctx context.Context, req GetPostRequest, _ *mono.Msg) (PostView, error) {
	view, err := m.service.GetPost(ctx, req.PostID)
	if err != nil {
		return PostView{}, err
	}
	return *view, nil
}

func (m *PostModule) handleUpdatePost(ctx context.Context, req UpdatePostRequest, _ *mono.Msg) (PostView, error) {
	view, err := m.service.UpdatePost(ctx, req.UserID, req.PostID, UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Image:   req.Image,
	})
	if err != nil {
		return PostView{}, err
	}
	return *view, nil
}

func (m *PostModule) handleDeletePost(ctx context.Context, req DeletePostRequest, _ *mono.Msg) (DeletePostResponse, error) {
	image, err := m.service.DeletePost(ctx, req.UserID, req.PostID)
	if err != nil {
		return DeletePostResponse{}, err
	}
	return DeletePostResponse{Image: image}, nil
}

func (m *PostModule) handleAddComment(ctx context.Context, req CommentRequest, _ *mono.Msg) (CommentView, error) {
	view, err := m.service.AddComment(ctx, req.UserID, req.PostID, req.Text)
	if err != nil {
		return CommentView{}, err
	}
	return *view, nil
}

func (m *PostModule) handleUpdateComment(ctx context.Context, req CommentRequest, _ *mono.Msg) (CommentView, error) {
	view, err := m.service.UpdateComment(ctx, req.UserID, req.PostID, req.CommentID, req.Text)
	if err != nil {
		return CommentView{}, err
	}
	return *view, nil
}

func (m *PostModule) handleDeleteComment(ctx context.Context, req DeleteCommentRequest, _ *mono.Msg) (Ack, error) {
	if err := m.service.DeleteComment(ctx, req.UserID, req.PostID, req.CommentID); err != nil {
		return Ack{}, err
	}
	return Ack{OK: true}, nil
}

func (m *PostModule) handleLikePost(ctx context.Context, req LikeRequest, _ *mono.Msg) (LikeResult, error) {
	result, err := m.service.LikePost(ctx, req.UserID, req.PostID)
	if err != nil {
		return LikeResult{}, err
	}
	return *result, nil
}

func (m *PostModule) handleUnlikePost(ctx context.Context, req LikeRequest, _ *mono.Msg) (LikeResult, error) {
	result, err := m.service.UnlikePost(ctx, req.UserID, req.PostID)
	if err != nil {
		return LikeResult{}, err
	}
	return *result, nil
}
