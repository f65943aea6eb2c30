package models

import (
	"time"
)

// CircleRole is a member's role within a circle.
type CircleRole string

const (
	RoleAdmin  CircleRole = "admin"
	RoleMember CircleRole = "member"
)

// Circle is a named sharing group.
type Circle struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	MemberCount int       `json:"memberCount"`
}

// CircleMember links a user to a circle with a role.
type CircleMember struct {
	ID       int64      `json:"id"`
	CircleID int64      `json:"circleId"`
	UserID   int64      `json:"userId"`
	Username string     `json:"username,omitempty"`
	Role     CircleRole `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}
