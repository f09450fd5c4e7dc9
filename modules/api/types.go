package api

import (
	"time"

	domain "github.com/youngcruel/blog-multiutente/domain/user"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest carries the new password; the token is in the path.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UpdateProfileRequest is the JSON or form body of PATCH /users/me.
type UpdateProfileRequest struct {
	Username *string `json:"username" form:"username"`
}

// CreatePostRequest is the JSON or form body of POST /posts. Tags are
// comma separated.
type CreatePostRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
	Tags    string `json:"tags" form:"tags"`
}

// UpdatePostRequest is the JSON or form body of PATCH /posts/:id.
type UpdatePostRequest struct {
	Title   *string `json:"title" form:"title"`
	Content *string `json:"content" form:"content"`
	Tags    *string `json:"tags" form:"tags"`
}

// CommentRequest is the body of the comment endpoints.
type CommentRequest struct {
	Text string `json:"text"`
}

// UserResponse represents a user.
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	domain.TokenPair
	User UserResponse `json:"user"`
}

// MessageResponse is returned by endpoints without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}
