// Package post implements blog posts, tags, comments and likes.
package post

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	domain "github.com/youngcruel/blog-multiutente/domain/post"
	"github.com/youngcruel/blog-multiutente/domain/user"
	"github.com/youngcruel/blog-multiutente/events"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultPageSize is the page size used when none is requested.
	DefaultPageSize = 20
	// MaxPageSize caps the page size of the feed.
	MaxPageSize = 100
)

var tagPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// UserDirectory resolves author ids to public profiles.
type UserDirectory interface {
	GetUsers(ctx context.Context, userIDs []string) ([]*user.User, error)
}

// EventPublisher announces interactions to the rest of the application.
type EventPublisher interface {
	PostLiked(ctx context.Context, event events.PostLikedEvent) error
	PostCommented(ctx context.Context, event events.PostCommentedEvent) error
}

// Service provides post operations.
type Service struct {
	repo      *Repository
	users     UserDirectory
	publisher EventPublisher
	sfGroup   singleflight.Group // collapses identical concurrent feed reads
	now       func() time.Time
}

// NewService creates a new post service.
func NewService(repo *Repository, users UserDirectory, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreatePostInput carries the fields of a new post.
type CreatePostInput struct {
	Title   string
	Content string
	Tags    []string
	Image   string
}

// UpdatePostInput lists the fields to change. Nil pointers and a nil Tags
// slice leave the field untouched.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Tags    []string
	Image   *string
}

// CreatePost validates and stores a new post authored by authorID.
func (s *Service) CreatePost(ctx context.Context, authorID string, in CreatePostInput) (*PostView, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	if err := validateTags(in.Tags); err != nil {
		return nil, err
	}

	tags, err := s.repo.FindOrCreateTags(in.Tags)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &domain.Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   in.Content,
		Image:     in.Image,
		AuthorID:  authorID,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePost(post); err != nil {
		return nil, err
	}

	log.Printf("[post] Created post %s by %s", post.ID, authorID)
	return s.buildView(ctx, post, PostStats{PostID: post.ID}, false), nil
}

// PostPage is one page of the feed.
type PostPage struct {
	Posts []*PostView `json:"posts"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int64       `json:"total"`
}

// ListPosts returns the feed, newest first.
func (s *Service) ListPosts(ctx context.Context, page, limit int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	key := fmt.Sprintf("list:%d:%d", page, limit)
	result, err, _ := s.sfGroup.Do(key, func() (any, error) {
		return s.loadPage(ctx, page, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.(*PostPage), nil
}

func (s *Service) loadPage(ctx context.Context, page, limit int) (*PostPage, error) {
	posts, total, err := s.repo.ListPosts((page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
	}

	stats, err := s.repo.Stats(ids)
	if err != nil {
		return nil, err
	}
	authors := s.resolveAuthors(ctx, authorIDs)

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p, stats[p.ID], authors))
	}

	return &PostPage{Posts: views, Page: page, Limit: limit, Total: total}, nil
}

// GetPost returns a post with its comments.
func (s *Service) GetPost(ctx context.Context, postID string) (*PostView, error) {
	post, err := s.repo.FindPost(postID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Stats([]string{post.ID})
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, post, stats[post.ID], true), nil
}

// UpdatePost changes a post owned by userID.
func (s *Service) UpdatePost(ctx context.Context, userID, postID string, in UpdatePostInput) (*PostView, error) {
	if in.Title == nil && in.Content == nil && in.Tags == nil && in.Image == nil {
		return nil, ErrNoChanges
	}

	post, err := s.ownedPost(userID, postID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if in.Content != nil {
		if err := validateContent(*in.Content); err != nil {
			return nil, err
		}
		fields["content"] = *in.Content
	}
	if in.Image != nil {
		fields["image"] = *in.Image
	}

	var tags []domain.Tag
	if in.Tags != nil {
		if err := validateTags(in.Tags); err != nil {
			return nil, err
		}
		if tags, err = s.repo.FindOrCreateTags(in.Tags); err != nil {
			return nil, err
		}
	}

	fields["updated_at"] = s.now()
	if err := s.repo.UpdatePost(post, fields, tags); err != nil {
		return nil, err
	}

	return s.GetPost(ctx, postID)
}

// DeletePost removes a post owned by userID and returns the image key it
// referenced, if any.
func (s *Service) DeletePost(_ context.Context, userID, postID string) (string, error) {
	post, err := s.ownedPost(userID, postID)
	if err != nil {
		return "", err
	}
	if err := s.repo.DeletePost(postID); err != nil {
		return "", err
	}

	log.Printf("[post] Deleted post %s", postID)
	return post.Image, nil
}

// AddComment stores a comment and announces it to the post owner.
func (s *Service) AddComment(ctx context.Context, userID, postID, text string) (*CommentView, error) {
	if err := validateComment(text); err != nil {
		return nil, err
	}

	post, err := s.repo.FindPost(postID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	comment := &domain.Comment{
		ID:        uuid.New().String(),
		PostID:    post.ID,
		AuthorID:  userID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.AddComment(comment); err != nil {
		return nil, err
	}

	// Notification is best effort: the comment is already stored.
	if err := s.publisher.PostCommented(ctx, events.PostCommentedEvent{
		PostID:      post.ID,
		PostOwnerID: post.AuthorID,
		ActorID:     userID,
		CommentID:   comment.ID,
		CommentText: comment.Text,
		OccurredAt:  now,
	}); err != nil {
		log.Printf("[post] Warning: failed to publish PostCommented event: %v", err)
	}

	authors := s.resolveAuthors(ctx, []string{userID})
	return newCommentView(comment, authors), nil
}

// UpdateComment changes the text of a comment written by userID.
func (s *Service) UpdateComment(ctx context.Context, userID, postID, commentID, text string) (*CommentView, error) {
	comment, err := s.ownedComment(userID, postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := validateComment(text); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCommentText(comment, text); err != nil {
		return nil, err
	}
	comment.Text = text

	authors := s.resolveAuthors(ctx, []string{userID})
	return newCommentView(comment, authors), nil
}

// DeleteComment removes a comment written by userID.
func (s *Service) DeleteComment(_ context.Context, userID, postID, commentID string) error {
	if _, err := s.ownedComment(userID, postID, commentID); err != nil {
		return err
	}
	return s.repo.DeleteComment(commentID)
}

// LikeResult reports the like count after a like or unlike.
type LikeResult struct {
	PostID    string `json:"postId"`
	LikeCount int64  `json:"likeCount"`
}

// LikePost records that userID likes the post and announces it to the owner.
func (s *Service) LikePost(ctx context.Context, userID, postID string) (*LikeResult, error) {
	post, err := s.repo.FindPost(postID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.AddLike(&domain.Like{PostID: post.ID, UserID: userID, CreatedAt: now}); err != nil {
		return nil, err
	}

	if err := s.publisher.PostLiked(ctx, events.PostLikedEvent{
		PostID:      post.ID,
		PostOwnerID: post.AuthorID,
		ActorID:     userID,
		OccurredAt:  now,
	}); err != nil {
		log.Printf("[post] Warning: failed to publish PostLiked event: %v", err)
	}

	return s.likeResult(post.ID)
}

// UnlikePost removes the like of userID.
func (s *Service) UnlikePost(_ context.Context, userID, postID string) (*LikeResult, error) {
	post, err := s.repo.FindPost(postID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveLike(post.ID, userID); err != nil {
		return nil, err
	}
	return s.likeResult(post.ID)
}

func (s *Service) likeResult(postID string) (*LikeResult, error) {
	stats, err := s.repo.Stats([]string{postID})
	if err != nil {
		return nil, err
	}
	return &LikeResult{PostID: postID, LikeCount: stats[postID].LikeCount}, nil
}

func (s *Service) ownedPost(userID, postID string) (*domain.Post, error) {
	post, err := s.repo.FindPost(postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *Service) ownedComment(userID, postID, commentID string) (*domain.Comment, error) {
	if _, err := s.repo.FindPost(postID); err != nil {
		return nil, err
	}
	comment, err := s.repo.FindComment(postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, ErrForbidden
	}
	return comment, nil
}

func (s *Service) buildView(ctx context.Context, post *domain.Post, stats PostStats, withComments bool) *PostView {
	ids := []string{post.AuthorID}
	if withComments {
		for _, c := range post.Comments {
			ids = append(ids, c.AuthorID)
		}
	}
	authors := s.resolveAuthors(ctx, ids)

	view := newPostView(post, stats, authors)
	if withComments {
		view.Comments = make([]*CommentView, 0, len(post.Comments))
		for i := range post.Comments {
			view.Comments = append(view.Comments, newCommentView(&post.Comments[i], authors))
		}
	}
	return view
}

// resolveAuthors never fails: unknown or unreachable authors are returned
// with their id only.
func (s *Service) resolveAuthors(ctx context.Context, ids []string) map[string]user.Summary {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	authors := make(map[string]user.Summary, len(unique))
	for _, id := range unique {
		authors[id] = user.Summary{ID: id}
	}
	if s.users == nil || len(unique) == 0 {
		return authors
	}

	users, err := s.users.GetUsers(ctx, unique)
	if err != nil {
		log.Printf("[post] Warning: failed to resolve authors: %v", err)
		return authors
	}
	for _, u := range users {
		authors[u.ID] = u.ToSummary()
	}
	return authors
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 3 || n > 100 {
		return ErrInvalidTitle
	}
	return nil
}

func validateContent(content string) error {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < 10 {
		return ErrInvalidContent
	}
	return nil
}

func validateTags(tags []string) error {
	for _, tag := range tags {
		if !tagPattern.MatchString(strings.TrimSpace(tag)) {
			return ErrInvalidTag
		}
	}
	return nil
}

func validateComment(text string) error {
	if strings.TrimSpace(text) == "" || utf8.RuneCountInString(text) > 500 {
		return ErrInvalidComment
	}
	return nil
}
