package model

import "time"

// TokenType says what a mailed one-time link unlocks.
type TokenType string

const (
	TokenTypeAccountActivate TokenType = "account_activate"
	TokenTypePasswordReset   TokenType = "password_reset"
)

// Token is the secret of an activation or password reset link.
// It is consumed at most once, before ExpiresAt.
type Token struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Type      TokenType  `db:"type"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}
