package factory

import "errors"

// Sentinel errors for factory operations.
var (
	// ErrNoBuilders is returned when creation is attempted with no
	// builders registered, or none survive the base-type filter.
	ErrNoBuilders = errors.New("factory: no builders available")

	// ErrAlreadyRegistered is returned when a key is registered twice.
	ErrAlreadyRegistered = errors.New("factory: builder already registered")

	// ErrUnknownBuilder is returned when SetDefault names an unregistered
	// key.
	ErrUnknownBuilder = errors.New("factory: builder not found")

	// ErrInvalidBuilder is returned when a registered value is not a
	// usable constructor function.
	ErrInvalidBuilder = errors.New("factory: invalid builder")

	// ErrBuild is returned when the chosen builder cannot be invoked with
	// the supplied arguments, or its constructor fails.
	ErrBuild = errors.New("factory: build failed")
)
