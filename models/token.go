package models

import "time"

// PasswordResetToken is a persisted, single-use reset credential. Keeping it
// in the store (instead of process memory) lets resets survive restarts and
// work across instances; expired rows are swept periodically.
type PasswordResetToken struct {
	Token     string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"index;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"-"`
	CreatedAt time.Time `json:"-"`
}

func (t PasswordResetToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}
