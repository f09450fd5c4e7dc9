package auth

import "errors"

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the email is already registered.
	ErrUserExists = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
	// ErrInvalidUsername is returned when a username breaks the naming rules.
	ErrInvalidUsername = errors.New("username must be 3-30 letters, digits or underscores")
	// ErrInvalidResetToken is returned for unknown or expired password reset tokens.
	ErrInvalidResetToken = errors.New("password reset token is invalid or has expired")
	// ErrInvalidToken is returned when a JWT is malformed or has a bad signature.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a JWT has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// knownErrors lists the sentinels that survive a request-reply round trip.
var knownErrors = []error{
	ErrUserNotFound,
	ErrUserExists,
	ErrInvalidCredentials,
	ErrInvalidEmail,
	ErrWeakPassword,
	ErrPasswordTooLong,
	ErrInvalidUsername,
	ErrInvalidResetToken,
	ErrExpiredToken,
	ErrInvalidToken,
}
