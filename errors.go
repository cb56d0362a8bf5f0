package authkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for AuthKit operations.
var (
	// ErrInvalidName is returned when an entity name fails the naming
	// pattern check.
	ErrInvalidName = errors.New("authkit: invalid entity name")

	// ErrInvalidPermission is returned when a permission string or level
	// literal cannot be parsed.
	ErrInvalidPermission = errors.New("authkit: invalid permission")

	// ErrEntityNotFound is returned when a user or group lookup fails, or
	// an operand is not a supported entity variant.
	ErrEntityNotFound = errors.New("authkit: entity not found")

	// ErrPermissionNotFound is returned when a permission lookup by its
	// "name:LEVEL" key fails.
	ErrPermissionNotFound = errors.New("authkit: permission not found")

	// ErrRoleNotFound is returned when a role lookup by name fails.
	ErrRoleNotFound = errors.New("authkit: role not found")

	// ErrPermissionUnset is returned when a guarded callable carries no
	// permission and none was supplied.
	ErrPermissionUnset = errors.New("authkit: no permission attached")

	// ErrAccessDenied is returned when the decision algorithm denies an
	// entity a permission.
	ErrAccessDenied = errors.New("authkit: access denied")

	// ErrNoEntity is returned when no acting entity is found in a request
	// or context.
	ErrNoEntity = errors.New("authkit: no entity in context")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err        error    // Underlying sentinel error
	Message    string   // Additional context
	Entity     string   // Entity involved (if applicable)
	Permission string   // Permission involved (if applicable)
	Role       string   // Role involved (if applicable)
	Target     string   // Guarded callable involved (if applicable)
	Held       []string // Permissions the entity holds, for denial diagnosis
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithEntity adds entity information to the error.
func (e *Error) WithEntity(name string) *Error {
	e.Entity = name
	return e
}

// WithPermission adds permission information to the error.
func (e *Error) WithPermission(key string) *Error {
	e.Permission = key
	return e
}

// WithRole adds role information to the error.
func (e *Error) WithRole(name string) *Error {
	e.Role = name
	return e
}

// WithTarget adds the guarded callable's identity to the error.
func (e *Error) WithTarget(name string) *Error {
	e.Target = name
	return e
}

// WithHeld records the permissions the entity currently holds.
func (e *Error) WithHeld(held []string) *Error {
	e.Held = held
	return e
}

// IsAccessDenied checks if an error is a denial from the decision algorithm.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsEntityNotFound checks if an error is due to an unknown entity.
func IsEntityNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsPermissionNotFound checks if an error is due to an unknown permission.
func IsPermissionNotFound(err error) bool {
	return errors.Is(err, ErrPermissionNotFound)
}

// IsRoleNotFound checks if an error is due to an unknown role.
func IsRoleNotFound(err error) bool {
	return errors.Is(err, ErrRoleNotFound)
}

// IsInvalidName checks if an error is due to a malformed entity name.
func IsInvalidName(err error) bool {
	return errors.Is(err, ErrInvalidName)
}

// IsInvalidPermission checks if an error is due to an unparsable permission
// string or level literal.
func IsInvalidPermission(err error) bool {
	return errors.Is(err, ErrInvalidPermission)
}

// IsPermissionUnset checks if an error is due to a guarded callable missing
// its permission.
func IsPermissionUnset(err error) bool {
	return errors.Is(err, ErrPermissionUnset)
}

// IsNoEntity checks if an error is due to a missing acting entity.
func IsNoEntity(err error) bool {
	return errors.Is(err, ErrNoEntity)
}
