package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by Open when no blob exists for the reference.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidRef is returned for references that could escape the store.
	ErrInvalidRef = errors.New("invalid blob reference")
)

// Storage is an opaque blob store for uploaded media. References are
// relative slash-separated keys such as "3f/3f2a...c1.png".
type Storage interface {
	// Put stores the contents of r and returns a new reference.
	Put(ctx context.Context, r io.Reader, contentType string) (string, error)

	// Open returns a reader for the blob behind ref.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)

	// Delete removes the blob; deleting a missing blob is not an error.
	Delete(ctx context.Context, ref string) error

	// URLFor returns the path clients fetch the blob from.
	URLFor(ref string) string
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// URLPrefix is where the HTTP layer serves blobs from.
const URLPrefix = "/uploads/"

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string
	S3Endpoint   string // optional, for S3-compatible services
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3 bucket is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// generateRef builds a fresh reference, sharded by the first two characters
// of a random UUID, with an extension derived from the content type.
func generateRef(contentType string) string {
	id := uuid.New().String()
	return fmt.Sprintf("%s/%s%s", id[:2], id, extensionFor(contentType))
}

func extensionFor(contentType string) string {
	if contentType == "" {
		return ""
	}
	if m := mimetype.Lookup(contentType); m != nil {
		return m.Extension()
	}
	return ""
}

// validateRef rejects empty, absolute and parent-relative references.
func validateRef(ref string) error {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.Contains(ref, "\\") {
		return ErrInvalidRef
	}
	if path.Clean(ref) != ref {
		return ErrInvalidRef
	}
	for _, part := range strings.Split(ref, "/") {
		if part == ".." || part == "." {
			return ErrInvalidRef
		}
	}
	return nil
}
