package errors

import "errors"

// Common application errors shared across services and handlers.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for authorization failures (bad or missing token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the user lacks permission for an action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for invalid input data.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken is returned when an access token has expired.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict is returned for resource state conflicts (for example a
	// duplicate answer to the same question within a session).
	ErrConflict = errors.New("resource state conflict")
)
