package user

import (
	"time"
)

// User is a blog account.
type User struct {
	ID                   string `gorm:"primaryKey;type:text"`
	Email                string `gorm:"uniqueIndex;not null;type:text"`
	Username             string `gorm:"index;type:text"`
	PasswordHash         string `gorm:"not null;type:text"`
	ProfileImage         string `gorm:"type:text"`
	ResetPasswordToken   string `gorm:"index;type:text"`
	ResetPasswordExpires *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Summary is the public view of a user embedded in posts and comments.
type Summary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// ToSummary returns the public view of the user.
func (u *User) ToSummary() Summary {
	return Summary{
		ID:           u.ID,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
	}
}

// TokenPair represents access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

// Claims represents the authenticated identity carried by an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
