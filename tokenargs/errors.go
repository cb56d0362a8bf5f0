package tokenargs

import "errors"

// Sentinel errors for the token parser.
var (
	// ErrInvalidArgument is returned when an argument declaration is
	// inconsistent (boolean with default, bad default type, ...).
	ErrInvalidArgument = errors.New("tokenargs: invalid argument")

	// ErrArgumentDefined is returned when two arguments share a name.
	ErrArgumentDefined = errors.New("tokenargs: argument already defined")

	// ErrMissingArgument is returned when a mandatory argument is absent
	// after parsing.
	ErrMissingArgument = errors.New("tokenargs: missing mandatory argument")

	// ErrMissingValues is returned when an argument appears with fewer
	// values than it requires.
	ErrMissingValues = errors.New("tokenargs: missing values")
)
