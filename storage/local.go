package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// LocalStorage implements Storage on a filesystem rooted at the upload directory
type LocalStorage struct {
	fs afero.Fs
}

// NewLocalStorage creates a new local storage instance under basePath
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return NewLocalStorageFs(afero.NewBasePathFs(osFs, basePath)), nil
}

// NewLocalStorageFs wraps an existing filesystem; tests pass afero.NewMemMapFs().
func NewLocalStorageFs(fs afero.Fs) *LocalStorage {
	return &LocalStorage{fs: fs}
}

// Put stores a blob locally
func (s *LocalStorage) Put(ctx context.Context, r io.Reader, contentType string) (string, error) {
	ref := generateRef(contentType)

	if err := s.fs.MkdirAll(path.Dir(ref), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := s.fs.Create(ref)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		_ = s.fs.Remove(ref) // Clean up on error
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = s.fs.Remove(ref)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return ref, nil
}

// Open retrieves a blob from local storage
func (s *LocalStorage) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}

	file, err := s.fs.Open(ref)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err == nil && info.IsDir() {
		file.Close()
		return nil, ErrNotFound
	}

	return file, nil
}

// Delete removes a blob from local storage
func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	if err := validateRef(ref); err != nil {
		return err
	}

	err := s.fs.Remove(ref)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URLFor(ref string) string {
	return URLPrefix + ref
}
