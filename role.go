package authkit

// Role is a named set of concretely-leveled permissions, keyed by their
// "name:LEVEL" identity. A role encodes no hierarchy beyond what each
// permission's level already carries.
type Role struct {
	name        string
	permissions map[string]Permission
}

// NewRole creates an empty Role.
func NewRole(name string) *Role {
	return &Role{
		name:        name,
		permissions: make(map[string]Permission),
	}
}

// Name returns the role name.
func (r *Role) Name() string {
	return r.name
}

// Attach adds a permission to the role. Attaching the same permission twice
// is a no-op overwrite.
func (r *Role) Attach(p Permission) {
	r.permissions[p.Key()] = p
}

// Permissions returns the permissions attached to the role.
func (r *Role) Permissions() []Permission {
	perms := make([]Permission, 0, len(r.permissions))
	for _, p := range r.permissions {
		perms = append(perms, p)
	}
	return perms
}

// Grants reports whether any permission attached to the role satisfies the
// required one.
func (r *Role) Grants(required Permission) bool {
	for _, p := range r.permissions {
		if p.Satisfies(required) {
			return true
		}
	}
	return false
}

// RoleBinding is an edge in the binding graph granting a Role to an Entity.
// Bindings are not unique; the same pair may be bound more than once.
type RoleBinding struct {
	Entity Entity
	Role   *Role
}
