// Package authkit provides an in-memory role-based access control engine.
//
// AuthKit keeps the whole access graph in process memory: users and groups
// (entities), named permissions with an ordered level, roles bundling
// permissions, and role bindings granting roles to entities. The decision
// function answers a single question: may this entity exercise this
// permission?
//
// # Core Concepts
//
// Entity: a User ("user:alice") or a Group ("group:engineering"). Names are
// validated against ^(user|group):[A-Za-z0-9_]+$ and the two namespaces are
// disjoint. A group owns a set of users; a user inherits every role bound to
// any group it belongs to.
//
// Permission: a named capability with one of four ordered levels,
// NONE < READ < WRITE < EXECUTE. Permissions are stored under the key
// "name:LEVEL". Satisfaction is asymmetric: a held permission satisfies a
// required one when the names match and the held level is at least the
// required level, so a WRITE grant covers a READ requirement on the same
// name. A requirement at NONE always passes, even for unregistered entities;
// never grant NONE to an entity.
//
// Role: a named set of concretely-leveled permissions.
//
// RoleBinding: an edge granting a Role to an Entity. Bindings are never
// deduplicated; binding the same pair twice is harmless because decisions
// use set membership.
//
// # Basic Usage
//
//	a := authkit.New()
//
//	a.AddUser("alice")
//	a.AddRole("reader")
//	a.AddPermission("doc", authkit.LevelRead)
//	a.AttachPermissionToRole(authkit.ByPermissionKey("doc:READ"), authkit.ByRoleName("reader"))
//	a.BindRoleToEntity(authkit.ByRoleName("reader"), authkit.ByEntityName("user:alice"))
//
//	ok, err := a.CanEntityDo(authkit.ByEntityName("user:alice"), authkit.ByPermissionKey("doc:READ"))
//	// ok == true
//
// A process-wide instance is available through Default(), created lazily and
// safely on first use. New() builds isolated instances for tests or
// embedding.
//
// # Duplicate Registration
//
// Registering a permission, user, group or role under an existing key, or
// attaching a permission twice to a role, silently overwrites. This is
// documented last-write-wins behavior, not an error.
//
// # Guarding Calls
//
// A Guarded value attaches a required permission to a callable; Guard checks
// the decision before the call runs:
//
//	report := authkit.NewGuarded("reports.generate", generate,
//	    authkit.WithPermission(authkit.ByPermissionKey("reports:EXECUTE")))
//
//	guard := authkit.NewGuard(a)
//	if err := guard.Execute(ctx, authkit.ByEntityName("user:alice"), report); err != nil {
//	    // authkit.IsAccessDenied(err) carries the held permissions for diagnosis
//	}
//
// # Middleware Usage
//
//	mw := authkit.NewMiddleware(a)
//
//	mux.Handle("/reports", mw.RequirePermission(authkit.ByPermissionKey("reports:READ"))(reportsHandler))
//
// The middleware reads the acting entity from the request context (see
// WithEntity) and stores a Checker there for handlers.
//
// # Concurrency
//
// Every Authority instance is safe for concurrent use. All five internal
// maps live behind a single coarse lock, so multi-map reads such as
// EntityPermissions observe a consistent snapshot. No core operation blocks
// or suspends; decisions are a linear walk of the binding graph.
//
// # Audit and Metrics
//
// With WithAudit, every registration, binding and decision is appended to a
// bounded in-memory audit trail queryable through AuditLog. With
// WithMetrics, decision and registration counters are published to a
// prometheus registerer. Both are optional and off by default; the core
// itself never logs.
package authkit
