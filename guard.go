package authkit

import (
	"context"
	"fmt"
)

// GuardedFunc is a callable protected by the guard. The entity is the
// resolved acting entity, or nil when the Guarded was built WithoutEntity.
type GuardedFunc func(ctx context.Context, entity Entity) error

// Guarded binds a callable identity to a required permission. It is the
// explicit, data-carrying replacement for attaching permission metadata to
// callables: build a Guarded once and run it through a Guard at every call
// site.
type Guarded struct {
	name       string
	permission *PermissionRef
	passEntity bool
	fn         GuardedFunc
}

// GuardedOption configures a Guarded.
type GuardedOption func(*Guarded)

// WithPermission attaches the required permission.
func WithPermission(ref PermissionRef) GuardedOption {
	return func(g *Guarded) {
		g.permission = &ref
	}
}

// WithoutEntity stops the acting entity from being forwarded to the
// callable; it receives nil instead.
func WithoutEntity() GuardedOption {
	return func(g *Guarded) {
		g.passEntity = false
	}
}

// NewGuarded creates a guarded callable. The name identifies the callable
// in denial errors and must be stable across call sites.
func NewGuarded(name string, fn GuardedFunc, opts ...GuardedOption) *Guarded {
	g := &Guarded{
		name:       name,
		passEntity: true,
		fn:         fn,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the callable identity.
func (g *Guarded) Name() string {
	return g.name
}

// Permission returns the attached permission reference, if any.
func (g *Guarded) Permission() (PermissionRef, bool) {
	if g.permission == nil {
		return PermissionRef{}, false
	}
	return *g.permission, true
}

// Guard enforces decisions for guarded callables against an Authority.
type Guard struct {
	authority *Authority
}

// NewGuard creates a Guard backed by the given Authority.
func NewGuard(a *Authority) *Guard {
	return &Guard{authority: a}
}

// Check verifies that the entity may invoke the guarded callable, using the
// callable's attached permission. It fails with ErrPermissionUnset when no
// permission is attached, and with ErrAccessDenied, carrying the entity's
// held permissions, when the decision is negative.
func (g *Guard) Check(entity EntityRef, guarded *Guarded) error {
	if guarded.permission == nil {
		return NewError(ErrPermissionUnset,
			fmt.Sprintf("callable %q has no permission attached", guarded.name)).
			WithTarget(guarded.name)
	}
	return g.CheckWith(entity, guarded, *guarded.permission)
}

// CheckWith verifies the entity against an externally supplied permission,
// overriding whatever the callable carries.
func (g *Guard) CheckWith(entity EntityRef, guarded *Guarded, perm PermissionRef) error {
	e, err := g.authority.ResolveEntity(entity)
	if err != nil {
		return err
	}

	p, err := g.authority.GetPermission(perm)
	if err != nil {
		return err
	}

	allowed, err := g.authority.CanEntityDo(ByEntity(e), ByPermission(p))
	if err != nil {
		return err
	}
	if !allowed {
		return NewError(ErrAccessDenied,
			fmt.Sprintf("%s cannot invoke %q", e.Name(), guarded.name)).
			WithEntity(e.Name()).
			WithTarget(guarded.name).
			WithPermission(p.Key()).
			WithHeld(g.authority.heldPermissionKeys(ByEntity(e)))
	}
	return nil
}

// Execute runs the guarded callable after a successful Check, forwarding
// the resolved entity unless the callable was built WithoutEntity.
func (g *Guard) Execute(ctx context.Context, entity EntityRef, guarded *Guarded) error {
	if err := g.Check(entity, guarded); err != nil {
		return err
	}
	return g.invoke(ctx, entity, guarded)
}

// ExecuteWith runs the guarded callable after a successful CheckWith.
func (g *Guard) ExecuteWith(ctx context.Context, entity EntityRef, guarded *Guarded, perm PermissionRef) error {
	if err := g.CheckWith(entity, guarded, perm); err != nil {
		return err
	}
	return g.invoke(ctx, entity, guarded)
}

func (g *Guard) invoke(ctx context.Context, entity EntityRef, guarded *Guarded) error {
	if guarded.fn == nil {
		return nil
	}
	var e Entity
	if guarded.passEntity {
		// Resolution already succeeded during the check.
		e, _ = g.authority.ResolveEntity(entity)
	}
	return guarded.fn(ctx, e)
}

// Execute runs a guarded callable against the process-wide Authority.
func Execute(ctx context.Context, entity EntityRef, guarded *Guarded) error {
	return NewGuard(Default()).Execute(ctx, entity, guarded)
}
