package models

import (
	"time"
)

// MailItem is a message sent by a user to a circle. It moves from created
// to converted exactly once; there is no way back.
type MailItem struct {
	ID                  int64      `json:"id"`
	FromUserID          int64      `json:"fromUserId"`
	ToCircleID          int64      `json:"toCircleId"`
	Subject             *string    `json:"subject"`
	Content             *string    `json:"content"`
	MediaPath           *string    `json:"mediaPath"`
	MediaType           *FileType  `json:"mediaType"`
	IsConvertedToMagnet bool       `json:"isConvertedToMagnet"`
	ConvertedByUserID   *int64     `json:"convertedByUserId,omitempty"`
	ConvertedAt         *time.Time `json:"convertedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`

	// Joined for listings.
	FromUsername string `json:"fromUsername,omitempty"`
	CircleName   string `json:"circleName,omitempty"`

	// MediaURL is filled in by the HTTP layer when the mail has media.
	MediaURL *string `json:"mediaUrl,omitempty"`
}

// HasMedia reports whether the mail carries an attachment.
func (m *MailItem) HasMedia() bool {
	return m.MediaPath != nil && *m.MediaPath != ""
}
