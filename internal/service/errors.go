package service

import "errors"

// Service-level errors used by handlers for stable error_type mapping.
var (
	// ErrAuthenticationRequired means an operation that needs a user context
	// was attempted without one.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInvalidSessionState means an operation was attempted on a session
	// in the wrong lifecycle state (for example answering on a completed
	// session).
	ErrInvalidSessionState = errors.New("invalid session state")

	// ErrInvalidScope means the requested practice scope does not exist in
	// the proficiency hierarchy.
	ErrInvalidScope = errors.New("invalid practice scope")

	// ErrAlreadyAnswered means the question was already answered in this
	// session (duplicate submission or replayed beacon).
	ErrAlreadyAnswered = errors.New("question already answered in this session")

	// ErrInvalidCredentials is returned on login with a wrong email/password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserAlreadyExists is returned on registration with a taken
	// username or email.
	ErrUserAlreadyExists = errors.New("user already exists")
)
