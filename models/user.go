package models

import (
	"time"
)

// Handle positions accepted for the fridge door handle.
const (
	HandleLeft  = "left"
	HandleRight = "right"
)

// Defaults applied by the schema when a user registers.
const (
	DefaultMaxMagnets        = 2
	DefaultMaxCalendarEvents = 1
	DefaultFridgeColor       = "#A3D8F4"
	DefaultHandlePosition    = HandleRight
)

// User represents a user entity
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	PINHash           string    `json:"-"` // Never serialize the PIN hash
	MaxMagnets        int       `json:"maxMagnets"`
	MaxCalendarEvents int       `json:"maxCalendarEvents"`
	FridgeColor       string    `json:"fridgeColor"`
	HandlePosition    string    `json:"handlePosition"`
	CreatedAt         time.Time `json:"createdAt"`
}

// UserConfig is the per-user display configuration returned at login.
type UserConfig struct {
	FridgeColor       string `json:"fridgeColor"`
	HandlePosition    string `json:"handlePosition"`
	MaxMagnets        int    `json:"maxMagnets"`
	MaxCalendarEvents int    `json:"maxCalendarEvents"`
}

// Config returns the user's display configuration.
func (u *User) Config() UserConfig {
	return UserConfig{
		FridgeColor:       u.FridgeColor,
		HandlePosition:    u.HandlePosition,
		MaxMagnets:        u.MaxMagnets,
		MaxCalendarEvents: u.MaxCalendarEvents,
	}
}
