package confload

import "errors"

// Sentinel errors for configuration loading.
var (
	// ErrResolve is returned when an indirection cannot be resolved
	// (missing environment variable, unreadable file, unparsable
	// payload).
	ErrResolve = errors.New("confload: cannot resolve value")

	// ErrInvalidStub is returned when a stub's path or schema is
	// malformed.
	ErrInvalidStub = errors.New("confload: invalid stub")

	// ErrValidation is returned when the configuration fails a stub's
	// schema, or a stub's path matches nothing.
	ErrValidation = errors.New("confload: invalid configuration")
)
