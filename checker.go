package authkit

// Checker provides permission checks for a single resolved entity. It is
// typically created by the middleware and stored in the request context for
// use in handlers. A Checker holds no snapshot; every call consults the
// Authority.
type Checker struct {
	entity    Entity
	authority *Authority
}

// Checker creates a Checker for an entity.
func (a *Authority) Checker(ref EntityRef) (*Checker, error) {
	e, err := a.ResolveEntity(ref)
	if err != nil {
		return nil, err
	}
	return &Checker{entity: e, authority: a}, nil
}

// EntityName returns the prefixed name of the entity this checker is for.
func (c *Checker) EntityName() string {
	return c.entity.Name()
}

// Can reports whether the entity may exercise the permission. Lookup
// failures (unknown permission key) report false; use the Authority directly
// when the error matters.
func (c *Checker) Can(perm PermissionRef) bool {
	ok, err := c.authority.CanEntityDo(ByEntity(c.entity), perm)
	if err != nil {
		return false
	}
	return ok
}

// CanAny reports whether the entity may exercise any of the permissions.
func (c *Checker) CanAny(perms ...PermissionRef) bool {
	for _, p := range perms {
		if c.Can(p) {
			return true
		}
	}
	return false
}

// CanAll reports whether the entity may exercise all of the permissions.
func (c *Checker) CanAll(perms ...PermissionRef) bool {
	for _, p := range perms {
		if !c.Can(p) {
			return false
		}
	}
	return true
}

// Roles returns the names of every role the entity holds, directly or
// through group membership. Duplicate bindings are collapsed.
func (c *Checker) Roles() []string {
	roles, err := c.authority.EntityRoles(ByEntity(c.entity))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		if seen[r.Name()] {
			continue
		}
		seen[r.Name()] = true
		names = append(names, r.Name())
	}
	return names
}

// Permissions returns the distinct permissions the entity holds.
func (c *Checker) Permissions() []Permission {
	perms, err := c.authority.EntityPermissions(ByEntity(c.entity))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool, len(perms))
	out := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		out = append(out, p)
	}
	return out
}

// IsEmpty reports whether the entity holds no roles at all.
func (c *Checker) IsEmpty() bool {
	roles, err := c.authority.EntityRoles(ByEntity(c.entity))
	if err != nil {
		return true
	}
	return len(roles) == 0
}
