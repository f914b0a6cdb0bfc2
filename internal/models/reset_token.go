package models

import "time"

// PasswordResetToken is a one-time code issued by the forgot-password flow.
// Only the bcrypt hash of the code is stored.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
