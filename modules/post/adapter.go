package post

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// PostPort defines the post operations available to other modules.
type PostPort interface {
	CreatePost(ctx context.Context, req CreatePostRequest) (*PostView, error)
	ListPosts(ctx context.Context, page, limit int) (*PostPage, error)
	GetPost(ctx context.Context, postID string) (*PostView, error)
	UpdatePost(ctx context.Context, req UpdatePostRequest) (*PostView, error)
	DeletePost(ctx context.Context, userID, postID string) (*DeletePostResponse, error)
	AddComment(ctx context.Context, userID, postID, text string) (*CommentView, error)
	UpdateComment(ctx context.Context, userID, postID, commentID, text string) (*CommentView, error)
	DeleteComment(ctx context.Context, userID, postID, commentID string) error
	LikePost(ctx context.Context, userID, postID string) (*LikeResult, error)
	UnlikePost(ctx context.Context, userID, postID string) (*LikeResult, error)
}

// PostAdapter implements PostPort using the service container.
type PostAdapter struct {
	container mono.ServiceContainer
}

// Compile-time interface check.
var _ PostPort = (*PostAdapter)(nil)

// NewPostAdapter creates a new PostAdapter.
func NewPostAdapter(container mono.ServiceContainer) *PostAdapter {
	if container == nil {
		panic("post adapter requires non-nil ServiceContainer")
	}
	return &PostAdapter{container: container}
}

// call invokes a request-reply service and decodes its reply into resp.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, restoreError(err))
	}
	return nil
}

// restoreError maps a remote error message back onto the matching sentinel.
func restoreError(err error) error {
	msg := err.Error()
	for _, known := range knownErrors {
		if strings.Contains(msg, known.Error()) {
			return known
		}
	}
	return err
}

// CreatePost creates a post.
func (a *PostAdapter) CreatePost(ctx context.Context, req CreatePostRequest) (*PostView, error) {
	var resp PostView
	if err := call(ctx, a.container, "create-post", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPosts returns one page of the feed.
func (a *PostAdapter) ListPosts(ctx context.Context, page, limit int) (*PostPage, error) {
	req := ListPostsRequest{Page: page, Limit: limit}
	var resp PostPage
	if err := call(ctx, a.container, "list-posts", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPost returns a post with its comments.
func (a *PostAdapter) GetPost(ctx context.Context, postID string) (*PostView, error) {
	req := GetPostRequest{PostID: postID}
	var resp PostView
	if err := call(ctx, a.container, "get-post", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePost changes a post.
func (a *PostAdapter) UpdatePost(ctx context.Context, req UpdatePostRequest) (*PostView, error) {
	var resp PostView
	if err := call(ctx, a.container, "update-post", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePost removes a post.
func (a *PostAdapter) DeletePost(ctx context.Context, userID, postID string) (*DeletePostResponse, error) {
	req := DeletePostRequest{UserID: userID, PostID: postID}
	var resp DeletePostResponse
	if err := call(ctx, a.container, "delete-post", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddComment comments on a post.
func (a *PostAdapter) AddComment(ctx context.Context, userID, postID, text string) (*CommentView, error) {
	req := CommentRequest{UserID: userID, PostID: postID, Text: text}
	var resp CommentView
	if err := call(ctx, a.container, "add-comment", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateComment edits a comment.
func (a *PostAdapter) UpdateComment(ctx context.Context, userID, postID, commentID, text string) (*CommentView, error) {
	req := CommentRequest{UserID: userID, PostID: postID, CommentID: commentID, Text: text}
	var resp CommentView
	if err := call(ctx, a.container, "update-comment", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteComment removes a comment.
func (a *PostAdapter) DeleteComment(ctx context.Context, userID, postID, commentID string) error {
	req := DeleteCommentRequest{UserID: userID, PostID: postID, CommentID: commentID}
	var resp Ack
	return call(ctx, a.container, "delete-comment", &req, &resp)
}

// LikePost likes a post.
func (a *PostAdapter) LikePost(ctx context.Context, userID, postID string) (*LikeResult, error) {
	req := LikeRequest{UserID: userID, PostID: postID}
	var resp LikeResult
	if err := call(ctx, a.container, "like-post", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnlikePost removes a like.
func (a *PostAdapter) UnlikePost(ctx context.Context, userID, postID string) (*LikeResult, error) {
	req := LikeRequest{UserID: userID, PostID: postID}
	var resp LikeResult
	if err := call(ctx, a.container, "unlike-post", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
