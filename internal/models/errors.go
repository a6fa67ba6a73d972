package models

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("not found")

// ValidationError reports bad input: a missing user, a malformed identifier,
// a coupon request with neither percent nor amount off.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ApplicationError reports a business-rule violation: a product that is not
// in the catalog, a currency without a conversion rate.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string { return e.Message }

func NewApplicationError(message string) error {
	return &ApplicationError{Message: message}
}

func IsUniqueConstraint(err error) bool {
	// sqlite3 driver error strings are stable enough for this check.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
