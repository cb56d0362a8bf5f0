package authkit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Authority is the RBAC engine. It owns the identity registry (users and
// groups), the permission catalog, the role catalog and the binding graph,
// composed into one consistent namespace.
//
// All five internal maps are guarded by a single coarse lock, so every
// mutation and every multi-map read observes a consistent snapshot. Nothing
// is ever deleted; registrations live for the lifetime of the process.
type Authority struct {
	mu sync.RWMutex

	roles       map[string]*Role
	permissions map[string]Permission
	users       map[string]*User
	groups      map[string]*Group

	// The binding graph is indexed both ways for bidirectional traversal.
	bindingsByEntity map[string][]*RoleBinding
	bindingsByRole   map[string][]*RoleBinding

	audit   *auditTrail
	metrics *metrics
}

// Option configures an Authority.
type Option func(*Authority)

// WithAudit enables the in-memory audit trail, keeping at most capacity
// entries (oldest dropped first). A capacity <= 0 uses a default of 1024.
func WithAudit(capacity int) Option {
	return func(a *Authority) {
		a.audit = newAuditTrail(capacity)
	}
}

// WithMetrics registers decision and registration counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(a *Authority) {
		a.metrics = newMetrics(reg)
	}
}

// New creates an isolated Authority. Most applications use the process-wide
// Default() instead; New exists for tests and embedding.
func New(opts ...Option) *Authority {
	a := &Authority{
		roles:            make(map[string]*Role),
		permissions:      make(map[string]Permission),
		users:            make(map[string]*User),
		groups:           make(map[string]*Group),
		bindingsByEntity: make(map[string][]*RoleBinding),
		bindingsByRole:   make(map[string][]*RoleBinding),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var (
	defaultOnce      sync.Once
	defaultAuthority *Authority
)

// Default returns the process-wide Authority, created lazily on first use.
// It is never torn down before process exit.
func Default() *Authority {
	defaultOnce.Do(func() {
		defaultAuthority = New()
	})
	return defaultAuthority
}

// ============================================================================
// IDENTITY REGISTRY
// ============================================================================

// AddUser registers a user under its bare name, normalized to "user:<name>".
// Registering an existing name overwrites.
func (a *Authority) AddUser(name string) error {
	u, err := NewUser(name)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.users[name] = u
	a.mu.Unlock()

	a.recordRegistration(AuditActionUserAdded, u.Name())
	return nil
}

// AddGroup registers a group under its bare name, normalized to
// "group:<name>". Registering an existing name overwrites.
func (a *Authority) AddGroup(name string) error {
	g, err := NewGroup(name)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.groups[name] = g
	a.mu.Unlock()

	a.recordRegistration(AuditActionGroupAdded, g.Name())
	return nil
}

// AddUserToGroup inserts a user into a group's member set. Both operands may
// be given by value or by name.
func (a *Authority) AddUserToGroup(user, group EntityRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ue, err := a.resolveEntityLocked(user)
	if err != nil {
		return err
	}
	u, ok := ue.(*User)
	if !ok {
		return NewError(ErrEntityNotFound,
			fmt.Sprintf("%s is not a user", ue.Name())).WithEntity(ue.Name())
	}

	ge, err := a.resolveEntityLocked(group)
	if err != nil {
		return err
	}
	g, ok := ge.(*Group)
	if !ok {
		return NewError(ErrEntityNotFound,
			fmt.Sprintf("%s is not a group", ge.Name())).WithEntity(ge.Name())
	}

	g.AddUser(u)

	a.recordMembership(u.Name(), g.Name())
	return nil
}

// ResolveEntity returns the canonical entity for a reference. By-value
// references pass through; names may be bare or prefixed. Bare names resolve
// against users first, then groups.
func (a *Authority) ResolveEntity(ref EntityRef) (Entity, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resolveEntityLocked(ref)
}

func (a *Authority) resolveEntityLocked(ref EntityRef) (Entity, error) {
	if ref.entity != nil {
		switch ref.entity.(type) {
		case *User, *Group:
			return ref.entity, nil
		default:
			return nil, NewError(ErrEntityNotFound,
				fmt.Sprintf("unsupported entity variant %T", ref.entity)).
				WithEntity(ref.entity.Name())
		}
	}

	name := ref.name
	if raw, ok := strings.CutPrefix(name, UserPrefix); ok {
		if u, ok := a.users[raw]; ok {
			return u, nil
		}
	} else if raw, ok := strings.CutPrefix(name, GroupPrefix); ok {
		if g, ok := a.groups[raw]; ok {
			return g, nil
		}
	} else {
		if u, ok := a.users[name]; ok {
			return u, nil
		}
		if g, ok := a.groups[name]; ok {
			return g, nil
		}
	}
	return nil, NewError(ErrEntityNotFound,
		fmt.Sprintf("no user or group named %q", name)).WithEntity(name)
}

// flattenLocked expands an entity to the names its permissions are gathered
// from: a group is just itself; a user is every group containing it, then
// the user itself.
func (a *Authority) flattenLocked(e Entity) ([]string, error) {
	switch ent := e.(type) {
	case *Group:
		return []string{ent.Name()}, nil
	case *User:
		var names []string
		for _, g := range a.groups {
			if g.HasUser(ent.Name()) {
				names = append(names, g.Name())
			}
		}
		return append(names, ent.Name()), nil
	default:
		return nil, NewError(ErrEntityNotFound,
			fmt.Sprintf("unsupported entity variant %T", e)).WithEntity(e.Name())
	}
}

// ============================================================================
// PERMISSION CATALOG
// ============================================================================

// AddPermission registers a permission under its "name:LEVEL" key.
// Re-registration with the same key silently overwrites.
func (a *Authority) AddPermission(name string, level Level) {
	p := NewPermission(name, level)

	a.mu.Lock()
	a.permissions[p.Key()] = p
	a.mu.Unlock()

	a.recordRegistration(AuditActionPermissionAdded, p.Key())
}

// GetPermission resolves a permission reference. By-value references pass
// through; keys must parse as "name:LEVEL" and be registered.
func (a *Authority) GetPermission(ref PermissionRef) (Permission, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.getPermissionLocked(ref)
}

func (a *Authority) getPermissionLocked(ref PermissionRef) (Permission, error) {
	if ref.perm != nil {
		return *ref.perm, nil
	}
	if _, err := ParsePermission(ref.key); err != nil {
		return Permission{}, err
	}
	p, ok := a.permissions[ref.key]
	if !ok {
		return Permission{}, NewError(ErrPermissionNotFound,
			fmt.Sprintf("%q is not registered", ref.key)).WithPermission(ref.key)
	}
	return p, nil
}

// ============================================================================
// ROLE CATALOG
// ============================================================================

// AddRole registers an empty role. Registering an existing name overwrites.
func (a *Authority) AddRole(name string) {
	a.mu.Lock()
	a.roles[name] = NewRole(name)
	a.mu.Unlock()

	a.recordRegistration(AuditActionRoleAdded, name)
}

// GetRole resolves a role reference.
func (a *Authority) GetRole(ref RoleRef) (*Role, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.getRoleLocked(ref)
}

func (a *Authority) getRoleLocked(ref RoleRef) (*Role, error) {
	if ref.role != nil {
		return ref.role, nil
	}
	r, ok := a.roles[ref.name]
	if !ok {
		return nil, NewError(ErrRoleNotFound,
			fmt.Sprintf("no role named %q", ref.name)).WithRole(ref.name)
	}
	return r, nil
}

// AttachPermissionToRole adds a permission to a role's set. Attaching the
// same permission twice is a no-op overwrite.
func (a *Authority) AttachPermissionToRole(perm PermissionRef, role RoleRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.getPermissionLocked(perm)
	if err != nil {
		return err
	}
	r, err := a.getRoleLocked(role)
	if err != nil {
		return err
	}
	r.Attach(p)

	a.recordGrant(p.Key(), r.Name())
	return nil
}

// ============================================================================
// BINDING GRAPH
// ============================================================================

// BindRoleToEntity grants a role to an entity. Bindings are never
// deduplicated: binding the same pair twice appends a second edge, which is
// harmless because decisions use set membership.
func (a *Authority) BindRoleToEntity(role RoleRef, entity EntityRef) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, err := a.getRoleLocked(role)
	if err != nil {
		return err
	}
	e, err := a.resolveEntityLocked(entity)
	if err != nil {
		return err
	}

	binding := &RoleBinding{Entity: e, Role: r}
	a.bindingsByEntity[e.Name()] = append(a.bindingsByEntity[e.Name()], binding)
	a.bindingsByRole[r.Name()] = append(a.bindingsByRole[r.Name()], binding)

	a.recordBinding(e.Name(), r.Name())
	return nil
}

// EntityRoles returns every role bound to the entity or, for a user, to any
// group the user belongs to. Duplicate bindings yield duplicate entries.
func (a *Authority) EntityRoles(ref EntityRef) ([]*Role, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, err := a.resolveEntityLocked(ref)
	if err != nil {
		return nil, err
	}
	return a.entityRolesLocked(e)
}

func (a *Authority) entityRolesLocked(e Entity) ([]*Role, error) {
	names, err := a.flattenLocked(e)
	if err != nil {
		return nil, err
	}

	var roles []*Role
	for _, name := range names {
		for _, binding := range a.bindingsByEntity[name] {
			roles = append(roles, binding.Role)
		}
	}
	return roles, nil
}

// EntityPermissions returns the flattened union of every permission attached
// to every role the entity holds, directly or through group membership.
// Duplicates are permitted.
func (a *Authority) EntityPermissions(ref EntityRef) ([]Permission, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, err := a.resolveEntityLocked(ref)
	if err != nil {
		return nil, err
	}
	return a.entityPermissionsLocked(e)
}

func (a *Authority) entityPermissionsLocked(e Entity) ([]Permission, error) {
	roles, err := a.entityRolesLocked(e)
	if err != nil {
		return nil, err
	}

	var perms []Permission
	for _, r := range roles {
		perms = append(perms, r.Permissions()...)
	}
	return perms, nil
}

// ============================================================================
// DECISION
// ============================================================================

// CanEntityDo reports whether the entity may exercise the permission.
//
// A requirement at level NONE passes unconditionally, without resolving the
// entity; public operations must not require a registered entity. Otherwise
// the entity's held permissions are walked for one that satisfies the
// requirement (same name, held level >= required level). Nothing is cached;
// every call re-walks the binding graph.
func (a *Authority) CanEntityDo(entity EntityRef, perm PermissionRef) (bool, error) {
	allowed, p, e, err := a.decide(entity, perm)
	if err != nil {
		return false, err
	}

	entityName := ""
	if e != nil {
		entityName = e.Name()
	}
	a.recordDecision(entityName, p.Key(), allowed)
	return allowed, nil
}

func (a *Authority) decide(entity EntityRef, perm PermissionRef) (bool, Permission, Entity, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, err := a.getPermissionLocked(perm)
	if err != nil {
		return false, Permission{}, nil, err
	}
	if p.Level == LevelNone {
		return true, p, nil, nil
	}

	e, err := a.resolveEntityLocked(entity)
	if err != nil {
		return false, p, nil, err
	}

	held, err := a.entityPermissionsLocked(e)
	if err != nil {
		return false, p, e, err
	}
	for _, h := range held {
		if h.Satisfies(p) {
			return true, p, e, nil
		}
	}
	return false, p, e, nil
}

// heldPermissionKeys returns the keys of the entity's held permissions, for
// denial diagnostics. Unresolvable entities yield nil.
func (a *Authority) heldPermissionKeys(ref EntityRef) []string {
	perms, err := a.EntityPermissions(ref)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(perms))
	for _, p := range perms {
		keys = append(keys, p.Key())
	}
	return keys
}
