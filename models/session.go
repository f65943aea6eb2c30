package models

import "time"

// Session maps an opaque token to a user.
type Session struct {
	Token     string     `json:"token"`
	UserID    int64      `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
