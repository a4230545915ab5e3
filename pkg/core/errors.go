package core

import "errors"

// Sentinel errors for the kardex domain.
// Use errors.Is to check: errors.Is(err, core.ErrNotFound)
var (
	// ErrConfig marks malformed box or threshold configuration.
	ErrConfig = errors.New("kardex: invalid configuration")

	// ErrNotFound marks an unknown card, set or resource identifier.
	ErrNotFound = errors.New("kardex: not found")

	// ErrInvalidInput marks malformed matcher or loader arguments.
	ErrInvalidInput = errors.New("kardex: invalid input")
)
