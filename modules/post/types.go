package post

// CreatePostRequest represents a create-post request.
type CreatePostRequest struct {
	AuthorID string   `json:"author_id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// ListPostsRequest represents a list-posts request.
type ListPostsRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// GetPostRequest represents a get-post request.
type GetPostRequest struct {
	PostID string `json:"post_id"`
}

// UpdatePostRequest represents an update-post request. Absent fields are
// left unchanged.
type UpdatePostRequest struct {
	UserID  string   `json:"user_id"`
	PostID  string   `json:"post_id"`
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags"`
	Image   *string  `json:"image,omitempty"`
}

// DeletePostRequest represents a delete-post request.
type DeletePostRequest struct {
	UserID string `json:"user_id"`
	PostID string `json:"post_id"`
}

// DeletePostResponse reports the image the deleted post referenced.
type DeletePostResponse struct {
	Image string `json:"image,omitempty"`
}

// CommentRequest represents an add-comment or update-comment request.
type CommentRequest struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id,omitempty"`
	Text      string `json:"text"`
}

// DeleteCommentRequest represents a delete-comment request.
type DeleteCommentRequest struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
}

// LikeRequest represents a like-post or unlike-post request.
type LikeRequest struct {
	UserID string `json:"user_id"`
	PostID string `json:"post_id"`
}

// Ack is returned by operations without a payload.
type Ack struct {
	OK bool `json:"ok"`
}
