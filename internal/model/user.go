package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  Handlers
// define separate response types with JSON tags; these structs are used
// by the repository and service layers only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – display name, required.
//  Email        – email address (nullable; at least one of Email/Phone set).
//  Phone        – phone number (nullable; at least one of Email/Phone set).
//  TgID         – optional Telegram identifier used for notifications.
//  Role         – ordered privilege level (USER, MANAGER, ADMIN).
//  IsActive     – whether the account is active (soft-delete flag).
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        *string   // users.email (nullable)
	Phone        *string   // users.phone (nullable)
	TgID         *string   // users.tg_id (nullable)
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// HasContact reports whether the user carries at least one contact
// channel.  Registration rejects users without any.
func (u User) HasContact() bool {
	return (u.Email != nil && *u.Email != "") || (u.Phone != nil && *u.Phone != "")
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
