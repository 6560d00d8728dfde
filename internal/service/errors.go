package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
)

// internal wraps an unexpected failure as a 500 with a short description.
func internal(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// notFoundOr maps sql.ErrNoRows to a 404 with the given message and any other
// failure to a 500.
func notFoundOr(err error, notFound, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return internal(err, failure)
}
