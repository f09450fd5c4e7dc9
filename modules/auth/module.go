package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/youngcruel/blog-multiutente/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config configures the auth module.
type Config struct {
	DBPath       string
	JWT          JWTConfig
	BcryptCost   int
	ResetBaseURL string
	Mailer       Mailer
}

// AuthModule provides account and session services.
type AuthModule struct {
	config  Config
	db      *gorm.DB
	service *AuthService
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(config Config) *AuthModule {
	if config.DBPath == "" {
		config.DBPath = "auth.db"
	}
	if config.Mailer == nil {
		config.Mailer = LogMailer{}
	}
	return &AuthModule{
		config: config,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user database and builds the service.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.config.DBPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewAuthService(
		NewUserRepository(db),
		NewPasswordHasher(m.config.BcryptCost),
		NewJWTManager(m.config.JWT),
		m.config.Mailer,
		m.config.ResetBaseURL,
	)

	log.Printf("[auth] Module started (database: %s)", m.config.DBPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.config.DBPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(container, "register", json.Unmarshal, json.Marshal, m.handleRegister); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "login", json.Unmarshal, json.Marshal, m.handleLogin); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "refresh-token", json.Unmarshal, json.Marshal, m.handleRefresh); err != nil {
		return fmt.Errorf("failed to register refresh-token service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "get-users", json.Unmarshal, json.Marshal, m.handleGetUsers); err != nil {
		return fmt.Errorf("failed to register get-users service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "update-profile", json.Unmarshal, json.Marshal, m.handleUpdateProfile); err != nil {
		return fmt.Errorf("failed to register update-profile service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "forgot-password", json.Unmarshal, json.Marshal, m.handleForgotPassword); err != nil {
		return fmt.Errorf("failed to register forgot-password service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "reset-password", json.Unmarshal, json.Marshal, m.handleResetPassword); err != nil {
		return fmt.Errorf("failed to register reset-password service: %w", err)
	}

	log.Printf("[auth] Registered services: register, login, refresh-token, validate-token, get-user, get-users, update-profile, forgot-password, reset-password")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Register(ctx, req.Email, req.Password, req.Username)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{User: toUserDTO(session.User), Tokens: *session.Tokens}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{User: toUserDTO(session.User), Tokens: *session.Tokens}, nil
}

func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (RefreshResponse, error) {
	tokens, err := m.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return RefreshResponse{}, err
	}
	return RefreshResponse{Tokens: *tokens}, nil
}

// handleValidateToken reports validation failures in the response body
// rather than as errors.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := ErrInvalidToken.Error()
		if errors.Is(err, ErrExpiredToken) {
			errMsg = ErrExpiredToken.Error()
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserDTO, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (m *AuthModule) handleGetUsers(ctx context.Context, req GetUsersRequest, _ *mono.Msg) (GetUsersResponse, error) {
	users, err := m.service.GetUsers(ctx, req.UserIDs)
	if err != nil {
		return GetUsersResponse{}, err
	}

	resp := GetUsersResponse{Users: make([]UserDTO, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserDTO(u))
	}
	return resp, nil
}

func (m *AuthModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (UserDTO, error) {
	user, err := m.service.UpdateProfile(ctx, req.UserID, ProfileUpdate{
		Username:     req.Username,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (m *AuthModule) handleForgotPassword(ctx context.Context, req ForgotPasswordRequest, _ *mono.Msg) (Ack, error) {
	if err := m.service.ForgotPassword(ctx, req.Email); err != nil {
		return Ack{}, err
	}
	return Ack{OK: true}, nil
}

func (m *AuthModule) handleResetPassword(ctx context.Context, req ResetPasswordRequest, _ *mono.Msg) (Ack, error) {
	if err := m.service.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return Ack{}, err
	}
	return Ack{OK: true}, nil
}
