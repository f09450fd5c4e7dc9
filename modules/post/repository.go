package post

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	domain "github.com/youngcruel/blog-multiutente/domain/post"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides access to posts, tags, comments and likes.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new post repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the post schema.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&domain.Tag{}, &domain.Post{}, &domain.Comment{}, &domain.Like{})
}

// PostStats holds the derived counters of a post.
type PostStats struct {
	PostID       string
	LikeCount    int64
	CommentCount int64
}

// CreatePost saves a new post together with its tag links.
func (r *Repository) CreatePost(post *domain.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// FindPost retrieves a post with its tags and comments, oldest comment first.
func (r *Repository) FindPost(id string) (*domain.Post, error) {
	var post domain.Post
	err := r.db.
		Preload("Tags").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return &post, nil
}

// ListPosts returns a page of posts, newest first, with tags loaded.
func (r *Repository) ListPosts(offset, limit int) ([]*domain.Post, int64, error) {
	var total int64
	if err := r.db.Model(&domain.Post{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []*domain.Post
	err := r.db.
		Preload("Tags").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

// Stats returns like and comment counts keyed by post id.
func (r *Repository) Stats(postIDs []string) (map[string]PostStats, error) {
	stats := make(map[string]PostStats, len(postIDs))
	if len(postIDs) == 0 {
		return stats, nil
	}
	for _, id := range postIDs {
		stats[id] = PostStats{PostID: id}
	}

	type row struct {
		PostID string
		N      int64
	}

	var likes []row
	if err := r.db.Model(&domain.Like{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&likes).Error; err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	for _, l := range likes {
		s := stats[l.PostID]
		s.LikeCount = l.N
		stats[l.PostID] = s
	}

	var comments []row
	if err := r.db.Model(&domain.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	for _, c := range comments {
		s := stats[c.PostID]
		s.CommentCount = c.N
		stats[c.PostID] = s
	}

	return stats, nil
}

// UpdatePost saves changed scalar fields and, when tags is non-nil, replaces
// the tag links.
func (r *Repository) UpdatePost(post *domain.Post, fields map[string]any, tags []domain.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(post).Updates(fields).Error; err != nil {
				return fmt.Errorf("failed to update post: %w", err)
			}
		}
		if tags != nil {
			if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("failed to update post tags: %w", err)
			}
		}
		return nil
	})
}

// DeletePost removes a post and everything attached to it.
func (r *Repository) DeletePost(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		post := &domain.Post{ID: id}
		if err := tx.Model(post).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to unlink tags: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		result := tx.Delete(&domain.Post{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

// FindOrCreateTags returns the tags named in names, creating missing ones.
// Names are lowercased and deduplicated.
func (r *Repository) FindOrCreateTags(names []string) ([]domain.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]domain.Tag, 0, len(names))

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag := domain.Tag{ID: uuid.New().String(), Name: name}
		if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
		}
		// On conflict the stored row keeps its own id.
		var stored domain.Tag
		if err := r.db.Where("name = ?", name).First(&stored).Error; err != nil {
			return nil, fmt.Errorf("failed to load tag %q: %w", name, err)
		}
		tags = append(tags, stored)
	}
	return tags, nil
}

// AddComment saves a new comment.
func (r *Repository) AddComment(comment *domain.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// FindComment retrieves a comment belonging to postID.
func (r *Repository) FindComment(postID, commentID string) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.First(&comment, "id = ? AND post_id = ?", commentID, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return &comment, nil
}

// UpdateCommentText changes the text of a comment.
func (r *Repository) UpdateCommentText(comment *domain.Comment, text string) error {
	if err := r.db.Model(comment).Update("text", text).Error; err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// DeleteComment removes a comment.
func (r *Repository) DeleteComment(commentID string) error {
	if err := r.db.Delete(&domain.Comment{}, "id = ?", commentID).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// AddLike records a like; a second like by the same user fails with
// ErrAlreadyLiked.
func (r *Repository) AddLike(like *domain.Like) error {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if result.Error != nil {
		return fmt.Errorf("failed to add like: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyLiked
	}
	return nil
}

// RemoveLike deletes a like, failing with ErrNotLiked if there was none.
func (r *Repository) RemoveLike(postID, userID string) error {
	result := r.db.Delete(&domain.Like{}, "post_id = ? AND user_id = ?", postID, userID)
	if result.Error != nil {
		return fmt.Errorf("failed to remove like: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotLiked
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
