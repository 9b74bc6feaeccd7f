package model

import (
	"database/sql"
	"time"
)

// User represents an application user record as stored in the `users`
// table.  The refresh_token column is the single session slot: the value
// stored there is the only refresh token currently accepted for the user,
// NULL meaning no active session.
//
// Fields:
//
//	ID           – primary key, UUID string.
//	Username     – unique username, stored lower-cased.
//	Email        – unique email address, stored lower-cased.
//	FullName     – display name.
//	PasswordHash – bcrypt hashed password.
//	RefreshToken – currently valid refresh token (NULL when logged out).
//	AvatarURL    – hosted avatar image URL.
//	CoverURL     – hosted cover image URL (nullable).
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string         // users.id
	Username     string         // users.username
	Email        string         // users.email
	FullName     string         // users.full_name
	PasswordHash string         // users.password_hash
	RefreshToken sql.NullString // users.refresh_token (nullable)
	AvatarURL    string         // users.avatar_url
	CoverURL     sql.NullString // users.cover_url (nullable)
	CreatedAt    time.Time      // users.created_at
	UpdatedAt    time.Time      // users.updated_at
}

// PublicUser is the client-facing projection of a User.  It never carries
// the password hash or the stored refresh token.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatar"`
	CoverURL  string    `json:"coverImage,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips credentials from a User for transport.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL.String,
		CreatedAt: u.CreatedAt,
	}
}
