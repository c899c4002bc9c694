package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned when the API rejects the supplied credentials.
	ErrAuthentication = errors.New("authentication failed: credentials missing or invalid")
	// ErrAPI matches any *APIError.
	ErrAPI = errors.New("api reported an error")
	// ErrSchema means an expected XML node or value was missing or malformed.
	ErrSchema = errors.New("unexpected api response schema")
	// ErrNoServices means the account has no eligible services.
	ErrNoServices = errors.New("no services for this account")
	// ErrIO wraps filesystem failures during export.
	ErrIO = errors.New("export io failure")

	ErrProfileNotFound = errors.New("profile not found")
	ErrSecretNotFound  = errors.New("secret not found")
)

// APIError carries the message of an error body returned by the API.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s", e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}
