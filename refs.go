package authkit

// The lookup APIs accept references that carry either the object itself or
// its string key, resolved uniformly by the Authority. The zero value of a
// ref is invalid; always use a constructor.

// EntityRef references an entity by value or by (bare or prefixed) name.
type EntityRef struct {
	entity Entity
	name   string
}

// ByEntity references an entity by value.
func ByEntity(e Entity) EntityRef {
	return EntityRef{entity: e}
}

// ByEntityName references an entity by name. Both bare ("alice") and
// prefixed ("user:alice") names are accepted; bare names resolve against
// users first, then groups.
func ByEntityName(name string) EntityRef {
	return EntityRef{name: name}
}

// PermissionRef references a permission by value or by "name:LEVEL" key.
type PermissionRef struct {
	perm *Permission
	key  string
}

// ByPermission references a permission by value. Resolution passes the
// value through without consulting the catalog.
func ByPermission(p Permission) PermissionRef {
	return PermissionRef{perm: &p}
}

// ByPermissionKey references a registered permission by its "name:LEVEL"
// key.
func ByPermissionKey(key string) PermissionRef {
	return PermissionRef{key: key}
}

// RoleRef references a role by value or by name.
type RoleRef struct {
	role *Role
	name string
}

// ByRole references a role by value.
func ByRole(r *Role) RoleRef {
	return RoleRef{role: r}
}

// ByRoleName references a registered role by name.
func ByRoleName(name string) RoleRef {
	return RoleRef{name: name}
}
