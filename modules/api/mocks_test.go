package api

import (
	"context"
	"errors"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	domain "github.com/youngcruel/blog-multiutente/domain/user"
	"github.com/youngcruel/blog-multiutente/modules/auth"
	"github.com/youngcruel/blog-multiutente/modules/media"
	"github.com/youngcruel/blog-multiutente/modules/notify"
	"github.com/youngcruel/blog-multiutente/modules/post"
)

var errNotImplemented = errors.New("not implemented")

// mockAuthPort implements auth.AuthPort for testing
type mockAuthPort struct {
	registerFunc       func(ctx context.Context, req auth.RegisterRequest) (*auth.SessionResponse, error)
	loginFunc          func(ctx context.Context, req auth.LoginRequest) (*auth.SessionResponse, error)
	validateTokenFunc  func(ctx context.Context, token string) (*domain.Claims, error)
	getUserFunc        func(ctx context.Context, userID string) (*domain.User, error)
	updateProfileFunc  func(ctx context.Context, req auth.UpdateProfileRequest) (*domain.User, error)
	forgotPasswordFunc func(ctx context.Context, email string) error
	resetPasswordFunc  func(ctx context.Context, token, password string) error
}

var _ auth.AuthPort = (*mockAuthPort)(nil)

func (m *mockAuthPort) Register(ctx context.Context, req auth.RegisterRequest) (*auth.SessionResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Login(ctx context.Context, req auth.LoginRequest) (*auth.SessionResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Refresh(_ context.Context, _ string) (*domain.TokenPair, error) {
	return nil, errNotImplemented
}

func (m *mockAuthPort) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) GetUsers(_ context.Context, _ []string) ([]*domain.User, error) {
	return nil, errNotImplemented
}

func (m *mockAuthPort) UpdateProfile(ctx context.Context, req auth.UpdateProfileRequest) (*domain.User, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) ForgotPassword(ctx context.Context, email string) error {
	if m.forgotPasswordFunc != nil {
		return m.forgotPasswordFunc(ctx, email)
	}
	return errNotImplemented
}

func (m *mockAuthPort) ResetPassword(ctx context.Context, token, password string) error {
	if m.resetPasswordFunc != nil {
		return m.resetPasswordFunc(ctx, token, password)
	}
	return errNotImplemented
}

// tokenAuth accepts "Bearer <userID>" for any non-empty user id.
func tokenAuth() *mockAuthPort {
	return &mockAuthPort{
		validateTokenFunc: func(_ context.Context, token string) (*domain.Claims, error) {
			if token == "" || token == "invalid" {
				return nil, auth.ErrInvalidToken
			}
			return &domain.Claims{UserID: token, Email: token + "@example.com"}, nil
		},
	}
}

// mockPostPort implements post.PostPort for testing
type mockPostPort struct {
	posts       map[string]*post.PostView
	likes       map[string]bool
	created     *post.CreatePostRequest
	lastComment string
}

var _ post.PostPort = (*mockPostPort)(nil)

func newMockPostPort() *mockPostPort {
	return &mockPostPort{
		posts: map[string]*post.PostView{},
		likes: map[string]bool{},
	}
}

func (m *mockPostPort) CreatePost(_ context.Context, req post.CreatePostRequest) (*post.PostView, error) {
	if len(req.Title) < 3 {
		return nil, post.ErrInvalidTitle
	}
	m.created = &req
	view := &post.PostView{ID: "p-new", Title: req.Title, Content: req.Content, Image: req.Image, Tags: req.Tags}
	view.Author.ID = req.AuthorID
	m.posts[view.ID] = view
	return view, nil
}

func (m *mockPostPort) ListPosts(_ context.Context, page, limit int) (*post.PostPage, error) {
	result := &post.PostPage{Page: page, Limit: limit, Posts: []*post.PostView{}}
	for _, p := range m.posts {
		result.Posts = append(result.Posts, p)
	}
	result.Total = int64(len(result.Posts))
	return result, nil
}

func (m *mockPostPort) GetPost(_ context.Context, postID string) (*post.PostView, error) {
	p, ok := m.posts[postID]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	return p, nil
}

func (m *mockPostPort) UpdatePost(_ context.Context, req post.UpdatePostRequest) (*post.PostView, error) {
	p, ok := m.posts[req.PostID]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	if p.Author.ID != req.UserID {
		return nil, post.ErrForbidden
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	return p, nil
}

func (m *mockPostPort) DeletePost(_ context.Context, userID, postID string) (*post.DeletePostResponse, error) {
	p, ok := m.posts[postID]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	if p.Author.ID != userID {
		return nil, post.ErrForbidden
	}
	delete(m.posts, postID)
	return &post.DeletePostResponse{Image: p.Image}, nil
}

func (m *mockPostPort) AddComment(_ context.Context, userID, postID, text string) (*post.CommentView, error) {
	if _, ok := m.posts[postID]; !ok {
		return nil, post.ErrPostNotFound
	}
	if text == "" {
		return nil, post.ErrInvalidComment
	}
	m.lastComment = text
	view := &post.CommentView{ID: "c1", PostID: postID, Text: text}
	view.Author.ID = userID
	return view, nil
}

func (m *mockPostPort) UpdateComment(_ context.Context, _, _, _, _ string) (*post.CommentView, error) {
	return nil, post.ErrForbidden
}

func (m *mockPostPort) DeleteComment(_ context.Context, _, _, _ string) error {
	return post.ErrCommentNotFound
}

func (m *mockPostPort) LikePost(_ context.Context, userID, postID string) (*post.LikeResult, error) {
	if _, ok := m.posts[postID]; !ok {
		return nil, post.ErrPostNotFound
	}
	if m.likes[postID+":"+userID] {
		return nil, post.ErrAlreadyLiked
	}
	m.likes[postID+":"+userID] = true
	return &post.LikeResult{PostID: postID, LikeCount: 1}, nil
}

func (m *mockPostPort) UnlikePost(_ context.Context, userID, postID string) (*post.LikeResult, error) {
	if !m.likes[postID+":"+userID] {
		return nil, post.ErrNotLiked
	}
	delete(m.likes, postID+":"+userID)
	return &post.LikeResult{PostID: postID}, nil
}

// memoryMedia is an in-memory MediaStore.
type memoryMedia struct {
	images  map[string][]byte
	deleted []string
}

func newMemoryMedia() *memoryMedia {
	return &memoryMedia{images: map[string][]byte{}}
}

func (m *memoryMedia) Save(_ context.Context, filename string, data []byte) (*media.Image, error) {
	if len(data) == 0 {
		return nil, media.ErrEmptyFile
	}
	key := "1700000000000-" + filename
	m.images[key] = data
	return &media.Image{Key: key, ContentType: "image/png", Size: int64(len(data))}, nil
}

func (m *memoryMedia) Open(_ context.Context, key string) ([]byte, *media.Image, error) {
	data, ok := m.images[key]
	if !ok {
		return nil, nil, media.ErrImageNotFound
	}
	return data, &media.Image{Key: key, ContentType: "image/png", Size: int64(len(data))}, nil
}

func (m *memoryMedia) Delete(_ context.Context, key string) error {
	if _, ok := m.images[key]; !ok {
		return media.ErrImageNotFound
	}
	delete(m.images, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryMedia) MaxSize() int64 {
	return 1024
}

// nopLogger implements types.Logger for testing
type nopLogger struct{}

func (l nopLogger) Debug(msg string, args ...any)         {}
func (l nopLogger) Info(msg string, args ...any)          {}
func (l nopLogger) Warn(msg string, args ...any)          {}
func (l nopLogger) Error(msg string, args ...any)         {}
func (l nopLogger) With(args ...any) types.Logger         { return l }
func (l nopLogger) WithError(err error) types.Logger      { return l }
func (l nopLogger) WithModule(module string) types.Logger { return l }

type testEnv struct {
	app      *fiber.App
	module   *APIModule
	auth     *mockAuthPort
	posts    *mockPostPort
	media    *memoryMedia
	registry *notify.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	registry := notify.NewRegistry(nopLogger{}, 4)
	t.Cleanup(registry.Close)

	env := &testEnv{
		auth:     tokenAuth(),
		posts:    newMockPostPort(),
		media:    newMemoryMedia(),
		registry: registry,
	}
	env.module = NewModule(Config{RequireWSAuth: true}, registry)
	env.module.authPort = env.auth
	env.module.postPort = env.posts
	env.module.SetMedia(env.media)
	env.app = env.module.newApp()
	return env
}
