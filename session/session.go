// Package session maps opaque session tokens to user ids. Two stores are
// provided: an in-process map (lost on restart) and one backed by the
// sessions table.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for unknown, invalidated or expired tokens.
var ErrNotFound = errors.New("session not found")

// Store resolves and records session tokens. Implementations are safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, token string) (int64, error)
	Put(ctx context.Context, token string, userID int64) error
	Invalidate(ctx context.Context, token string) error
}

const tokenBytes = 32

// NewToken returns a fresh 64-character hex token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
