package models

import (
	"time"
)

// FileType is the kind of media a magnet or mail attachment carries.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// Magnet is a photo or video pinned to a user's fridge door. Position is
// stored in normalized door space (see package coords); Rotation is in
// degrees and is never converted to radians before storage.
type Magnet struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	FilePath  string    `json:"filePath"`
	FileType  FileType  `json:"fileType"`
	Caption   *string   `json:"caption"`
	PositionX float64   `json:"positionX"`
	PositionY float64   `json:"positionY"`
	Rotation  float64   `json:"rotation"`
	CreatedAt time.Time `json:"createdAt"`

	// URL is where clients fetch the blob; filled in by the HTTP layer.
	URL string `json:"url,omitempty"`
}
