package auth

import (
	"errors"
	"testing"
	"time"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:            "test-secret-key",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
		Issuer:               "test-issuer",
	}
}

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	token, err := manager.GenerateAccessToken("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("claims.UserID = %v, want %v", claims.UserID, "user-123")
	}
	if claims.Email != "test@example.com" {
		t.Errorf("claims.Email = %v, want %v", claims.Email, "test@example.com")
	}
	if claims.Subject != "user-123" {
		t.Errorf("claims.Subject = %v, want %v", claims.Subject, "user-123")
	}
}

func TestJWTManager_TokenKindsAreNotInterchangeable(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	access, _ := manager.GenerateAccessToken("user-1", "a@example.com")
	refresh, _ := manager.GenerateRefreshToken("user-1", "a@example.com")

	if _, err := manager.ValidateRefreshToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateRefreshToken(access) error = %v, want %v", err, ErrInvalidToken)
	}
	if _, err := manager.ValidateAccessToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateAccessToken(refresh) error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	issued := time.Now().Add(-time.Hour)
	manager.now = func() time.Time { return issued }

	token, err := manager.GenerateAccessToken("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	manager.now = time.Now
	if _, err := manager.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateAccessToken() error = %v, want %v", err, ErrExpiredToken)
	}
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	otherSecret := testJWTConfig()
	otherSecret.SecretKey = "another-secret"
	forged, _ := NewJWTManager(otherSecret).GenerateAccessToken("user-1", "a@example.com")

	otherIssuer := testJWTConfig()
	otherIssuer.Issuer = "someone-else"
	foreign, _ := NewJWTManager(otherIssuer).GenerateAccessToken("user-1", "a@example.com")

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: forged},
		{name: "wrong issuer", token: foreign},
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.ValidateAccessToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateAccessToken() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestJWTManager_AccessTokenTTL(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	if got := manager.AccessTokenTTL(); got != 900 {
		t.Errorf("AccessTokenTTL() = %v, want %v", got, 900)
	}
}
