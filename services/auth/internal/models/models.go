package models

import "time"

// User is a stored credential. Rows are never updated after registration.
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `                                json:"created_at"`
}

// RefreshToken is the server-side half of a refresh token. Only the SHA-256
// of the token is kept.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                json:"id"`
	Username  string    `gorm:"index;not null"            json:"username"`
	TokenHash string    `gorm:"uniqueIndex;not null"      json:"-"`
	ExpiresAt int64     `gorm:"not null"                  json:"expires_at"`
	CreatedAt time.Time `                                 json:"created_at"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return now.Unix() >= t.ExpiresAt
}
