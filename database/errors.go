package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/fittrack/errors"
)

// IsConnectionError reports whether err looks like a lost or refused
// connection that reconnecting might resolve.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"no such host",
		"network is unreachable",
		"connection closed",
		"driver: bad connection",
		"database is closed",
		"database is locked",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports whether err is GORM's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
// Requires TranslateError, which Open always enables.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// FromDatabase converts a database error to an AppError. Not-found and
// duplicate-key errors map to NotFound and Conflict; everything else is a
// store failure and surfaces as StoreUnavailable.
func FromDatabase(err error, resource string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if ae, ok := apperrors.AsAppError(err); ok {
		return ae
	}

	switch {
	case IsNotFoundError(err):
		return apperrors.NotFound(resource, "").WithCause(err)
	case IsDuplicateError(err):
		return apperrors.Conflict(resource + " already exists").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(resource).WithCause(err)
	default:
		return apperrors.StoreUnavailable(err)
	}
}
