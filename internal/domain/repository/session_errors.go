package repository

import "errors"

var (
	// ErrSessionCompleted means a write was attempted on a session that has
	// already reached its terminal completed state.
	ErrSessionCompleted = errors.New("practice session is already completed")
)
