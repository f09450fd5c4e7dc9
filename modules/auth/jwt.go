package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	SecretKey            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	Issuer               string
}

// DefaultJWTConfig returns the development configuration. Sessions last a week.
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:            "blog-multiutente-dev-secret",
		AccessTokenDuration:  7 * 24 * time.Hour,
		RefreshTokenDuration: 30 * 24 * time.Hour,
		Issuer:               "blog-multiutente",
	}
}

// TokenClaims are the claims carried by access and refresh tokens.
type TokenClaims struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	TokenKind string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 tokens.
type JWTManager struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTManager creates a new JWTManager with the given configuration.
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{
		config: config,
		now:    time.Now,
	}
}

// GenerateAccessToken issues an access token for the user.
func (m *JWTManager) GenerateAccessToken(userID, email string) (string, error) {
	return m.sign(userID, email, tokenKindAccess, m.config.AccessTokenDuration)
}

// GenerateRefreshToken issues a refresh token for the user.
func (m *JWTManager) GenerateRefreshToken(userID, email string) (string, error) {
	return m.sign(userID, email, tokenKindRefresh, m.config.RefreshTokenDuration)
}

func (m *JWTManager) sign(userID, email, kind string, ttl time.Duration) (string, error) {
	issuedAt := m.now()
	claims := TokenClaims{
		UserID:    userID,
		Email:     email,
		TokenKind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.SecretKey))
}

// parse verifies signature, issuer and expiry and returns the claims.
func (m *JWTManager) parse(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	}, jwt.WithIssuer(m.config.Issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAccessToken verifies an access token.
func (m *JWTManager) ValidateAccessToken(raw string) (*TokenClaims, error) {
	return m.validateKind(raw, tokenKindAccess)
}

// ValidateRefreshToken verifies a refresh token.
func (m *JWTManager) ValidateRefreshToken(raw string) (*TokenClaims, error) {
	return m.validateKind(raw, tokenKindRefresh)
}

func (m *JWTManager) validateKind(raw, kind string) (*TokenClaims, error) {
	claims, err := m.parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.TokenKind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AccessTokenTTL returns the access token lifetime in seconds.
func (m *JWTManager) AccessTokenTTL() int64 {
	return int64(m.config.AccessTokenDuration.Seconds())
}
