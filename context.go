package authkit

import (
	"context"
)

// Context keys for AuthKit values.
type contextKey string

const (
	contextKeyEntity  contextKey = "authkit:entity"
	contextKeyChecker contextKey = "authkit:checker"
)

// WithEntity adds the acting entity's name to the context. This is the
// entity decisions are made for; bare and prefixed names are both accepted
// downstream.
func WithEntity(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKeyEntity, name)
}

// EntityFromContext retrieves the acting entity's name from context.
// Returns empty string if not set.
func EntityFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeyEntity); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// MustEntityFromContext retrieves the acting entity's name from context.
// Panics if not set.
func MustEntityFromContext(ctx context.Context) string {
	name := EntityFromContext(ctx)
	if name == "" {
		panic("authkit: entity not in context")
	}
	return name
}

// WithChecker adds a Checker to the context. This is set by the middleware
// and can be retrieved in handlers.
func WithChecker(ctx context.Context, checker *Checker) context.Context {
	return context.WithValue(ctx, contextKeyChecker, checker)
}

// CheckerFromContext retrieves the Checker from context.
// Returns nil if not set.
func CheckerFromContext(ctx context.Context) *Checker {
	if v := ctx.Value(contextKeyChecker); v != nil {
		if c, ok := v.(*Checker); ok {
			return c
		}
	}
	return nil
}
