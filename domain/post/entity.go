package post

import (
	"time"
)

// Post is a blog article written by a single author.
type Post struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Title     string    `gorm:"not null;type:text" json:"title"`
	Content   string    `gorm:"not null;type:text" json:"content"`
	Image     string    `gorm:"type:text" json:"image,omitempty"`
	AuthorID  string    `gorm:"index;not null;type:text" json:"authorId"`
	Tags      []Tag     `gorm:"many2many:post_tags;" json:"tags"`
	Comments  []Comment `gorm:"constraint:OnDelete:CASCADE;" json:"comments,omitempty"`
	Likes     []Like    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for the Post entity.
func (Post) TableName() string {
	return "posts"
}

// Tag is a lowercased, unique label shared between posts.
type Tag struct {
	ID   string `gorm:"primaryKey;type:text" json:"id"`
	Name string `gorm:"uniqueIndex;not null;type:text" json:"name"`
}

// TableName returns the table name for the Tag entity.
func (Tag) TableName() string {
	return "tags"
}

// Comment is a reply left on a post.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	PostID    string    `gorm:"index;not null;type:text" json:"postId"`
	AuthorID  string    `gorm:"index;not null;type:text" json:"authorId"`
	Text      string    `gorm:"not null;type:text" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for the Comment entity.
func (Comment) TableName() string {
	return "comments"
}

// Like records that a user liked a post. A user likes a post at most once.
type Like struct {
	PostID    string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"primaryKey;type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for the Like entity.
func (Like) TableName() string {
	return "likes"
}
