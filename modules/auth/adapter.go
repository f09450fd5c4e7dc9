package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/youngcruel/blog-multiutente/domain/user"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, req LoginRequest) (*SessionResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUsers(ctx context.Context, userIDs []string) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// Compile-time interface check.
var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	if container == nil {
		panic("auth adapter requires non-nil ServiceContainer")
	}
	return &AuthAdapter{
		container: container,
	}
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

// restoreError maps a remote error message back onto the matching sentinel
// so callers can use errors.Is across the request-reply boundary.
func restoreError(err error) error {
	msg := err.Error()
	for _, known := range knownErrors {
		if strings.Contains(msg, known.Error()) {
			return known
		}
	}
	return err
}

// Register creates an account.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error) {
	var resp SessionResponse
	if err := call(ctx, a.container, "register", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with email and password.
func (a *AuthAdapter) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	var resp SessionResponse
	if err := call(ctx, a.container, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new pair.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp RefreshResponse
	if err := call(ctx, a.container, "refresh-token", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.Tokens, nil
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := call(ctx, a.container, "validate-token", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		if resp.Error == ErrExpiredToken.Error() {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp UserDTO
	if err := call(ctx, a.container, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// GetUsers retrieves several users; unknown ids are omitted.
func (a *AuthAdapter) GetUsers(ctx context.Context, userIDs []string) ([]*domain.User, error) {
	req := GetUsersRequest{UserIDs: userIDs}
	var resp GetUsersResponse
	if err := call(ctx, a.container, "get-users", &req, &resp); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, u.ToDomain())
	}
	return users, nil
}

// UpdateProfile changes the username and/or profile image.
func (a *AuthAdapter) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error) {
	var resp UserDTO
	if err := call(ctx, a.container, "update-profile", &req, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

// ForgotPassword starts the reset flow for email.
func (a *AuthAdapter) ForgotPassword(ctx context.Context, email string) error {
	req := ForgotPasswordRequest{Email: email}
	var resp Ack
	return call(ctx, a.container, "forgot-password", &req, &resp)
}

// ResetPassword completes the reset flow.
func (a *AuthAdapter) ResetPassword(ctx context.Context, token, password string) error {
	req := ResetPasswordRequest{Token: token, Password: password}
	var resp Ack
	return call(ctx, a.container, "reset-password", &req, &resp)
}
