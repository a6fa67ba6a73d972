package ledger

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v81"
)

// ErrSignatureVerification means a webhook body could not be authenticated
// against the shared secret. Processing of that delivery must stop.
var ErrSignatureVerification = errors.New("webhook signature verification failed")

// Category classifies a provider failure.
type Category string

const (
	CategoryCard           Category = "card_error"
	CategoryRateLimit      Category = "rate_limit_error"
	CategoryInvalidRequest Category = "invalid_request_error"
	CategoryAPI            Category = "api_error"
	CategoryConnection     Category = "connection_error"
	CategoryAuthentication Category = "authentication_error"
	CategoryUnknown        Category = "unknown_error"
)

// Error is a remote ledger failure.
type Error struct {
	Category Category
	Code     string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger: %s: %s", e.Category, e.Message)
	}
	return fmt.Sprintf("ledger: %s", e.Category)
}

func (e *Error) Unwrap() error { return e.cause }

// UserFacing reports whether the failure belongs to the "declined" class
// whose message is safe to surface to the paying user. Connection,
// authentication and unknown failures stay internal.
func (e *Error) UserFacing() bool {
	switch e.Category {
	case CategoryCard, CategoryRateLimit, CategoryInvalidRequest, CategoryAPI:
		return true
	}
	return false
}

// wrapErr converts a stripe-go error into a classified *Error. Non-stripe
// errors (transport failures before a response was read) classify as
// connection errors.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var sErr *stripe.Error
	if !errors.As(err, &sErr) {
		return &Error{Category: CategoryConnection, Message: err.Error(), cause: err}
	}

	cat := CategoryUnknown
	switch sErr.Type {
	case stripe.ErrorTypeCard:
		cat = CategoryCard
	case stripe.ErrorTypeInvalidRequest:
		cat = CategoryInvalidRequest
	case stripe.ErrorTypeAPI:
		cat = CategoryAPI
	}
	// Rate-limit and authentication failures are reported by status code,
	// not error type.
	switch sErr.HTTPStatusCode {
	case http.StatusTooManyRequests:
		cat = CategoryRateLimit
	case http.StatusUnauthorized:
		cat = CategoryAuthentication
	}

	return &Error{
		Category: cat,
		Code:     string(sErr.Code),
		Message:  sErr.Msg,
		cause:    err,
	}
}
