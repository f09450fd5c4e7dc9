package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/youngcruel/blog-multiutente/domain/user"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// AuthService handles account and session business logic.
type AuthService struct {
	repo         *UserRepository
	hasher       *PasswordHasher
	jwt          *JWTManager
	mailer       Mailer
	resetBaseURL string
	now          func() time.Time
}

// NewAuthService creates a new AuthService. resetBaseURL is the link prefix
// mailed to users; the raw token is appended to it.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager, mailer Mailer, resetBaseURL string) *AuthService {
	return &AuthService{
		repo:         repo,
		hasher:       hasher,
		jwt:          jwt,
		mailer:       mailer,
		resetBaseURL: resetBaseURL,
		now:          time.Now,
	}
}

// Session is the result of a successful register or login.
type Session struct {
	User   *domain.User
	Tokens *domain.TokenPair
}

// Register creates a new account and signs it in.
func (s *AuthService) Register(_ context.Context, email, password, username string) (*Session, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if username != "" && !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.newSession(user)
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(_ context.Context, email, password string) (*Session, error) {
	user, err := s.repo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user)
}

// RefreshTokens exchanges a refresh token for a new token pair.
func (s *AuthService) RefreshTokens(_ context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.generateTokenPair(user.ID, user.Email)
}

// ValidateToken validates an access token and returns the identity it carries.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	return &domain.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(_ context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(userID)
}

// GetUsers retrieves several users at once.
func (s *AuthService) GetUsers(_ context.Context, userIDs []string) ([]*domain.User, error) {
	return s.repo.FindByIDs(userIDs)
}

// ProfileUpdate lists the profile fields to change. Nil fields are untouched.
type ProfileUpdate struct {
	Username     *string
	ProfileImage *string
}

// UpdateProfile changes the username and/or profile image of a user.
func (s *AuthService) UpdateProfile(_ context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	fields := make(map[string]any)
	if update.Username != nil {
		if !usernamePattern.MatchString(*update.Username) {
			return nil, ErrInvalidUsername
		}
		fields["username"] = *update.Username
	}
	if update.ProfileImage != nil {
		fields["profile_image"] = *update.ProfileImage
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.now()
		if err := s.repo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(userID)
}

// ForgotPassword issues a reset token and mails it. Unknown emails succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := s.now().Add(ResetTokenTTL)
	if err := s.repo.UpdateFields(user.ID, map[string]any{
		"reset_password_token":   digestResetToken(token),
		"reset_password_expires": expires,
	}); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.resetBaseURL+token); err != nil {
		log.Printf("[auth] Failed to send reset email to %s: %v", user.Email, err)
	}
	return nil
}

// ResetPassword sets a new password using a token from ForgotPassword.
func (s *AuthService) ResetPassword(_ context.Context, token, password string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	user, err := s.repo.FindByResetToken(digestResetToken(token), s.now())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdateFields(user.ID, map[string]any{
		"password_hash":          passwordHash,
		"reset_password_token":   "",
		"reset_password_expires": nil,
		"updated_at":             s.now(),
	})
}

func (s *AuthService) newSession(user *domain.User) (*Session, error) {
	tokens, err := s.generateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: tokens}, nil
}

// generateTokenPair generates both access and refresh tokens.
func (s *AuthService) generateTokenPair(userID, email string) (*domain.TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.AccessTokenTTL(),
		TokenType:    "Bearer",
	}, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// digestResetToken returns the form of a reset token kept in the database.
func digestResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
