package post

import (
	"time"

	domain "github.com/youngcruel/blog-multiutente/domain/post"
	"github.com/youngcruel/blog-multiutente/domain/user"
)

// PostView is the public representation of a post.
type PostView struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Image        string         `json:"image,omitempty"`
	Tags         []string       `json:"tags"`
	Author       user.Summary   `json:"author"`
	LikeCount    int64          `json:"likeCount"`
	CommentCount int64          `json:"commentCount"`
	Comments     []*CommentView `json:"comments,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CommentView is the public representation of a comment.
type CommentView struct {
	ID        string       `json:"id"`
	PostID    string       `json:"postId"`
	Text      string       `json:"text"`
	Author    user.Summary `json:"author"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func newPostView(p *domain.Post, stats PostStats, authors map[string]user.Summary) *PostView {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.Name)
	}

	author, ok := authors[p.AuthorID]
	if !ok {
		author = user.Summary{ID: p.AuthorID}
	}

	return &PostView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Image:        p.Image,
		Tags:         tags,
		Author:       author,
		LikeCount:    stats.LikeCount,
		CommentCount: stats.CommentCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func newCommentView(c *domain.Comment, authors map[string]user.Summary) *CommentView {
	author, ok := authors[c.AuthorID]
	if !ok {
		author = user.Summary{ID: c.AuthorID}
	}
	return &CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Text:      c.Text,
		Author:    author,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
