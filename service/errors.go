package service

import (
	"errors"

	"fridge-backend/apperr"
	"fridge-backend/repository"
)

// Error codes returned to clients alongside the message.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeMissingFile        = "MISSING_FILE"
	CodeInvalidPosition    = "INVALID_POSITION"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeLimitReached       = "LIMIT_REACHED"
	CodeNotMember          = "NOT_A_MEMBER"
	CodeAdminRequired      = "ADMIN_REQUIRED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAlreadyMember      = "ALREADY_MEMBER"
	CodeMailNotFound       = "MAIL_NOT_FOUND"
	CodeNoMedia            = "NO_MEDIA"
	CodeAlreadyConverted   = "ALREADY_CONVERTED"
)

var errNotConfigured = errors.New("service dependency not set")

// persistence wraps an unexpected repository failure. It passes through
// errors that are already classified.
func persistence(err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Persistence("Internal server error", err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
