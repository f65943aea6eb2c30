package models

import (
	"time"
)

// DateLayout is the on-the-wire and stored layout of a countdown date.
const DateLayout = "2006-01-02"

// CalendarEvent is a countdown target date owned by a user.
type CalendarEvent struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
