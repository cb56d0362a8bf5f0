package authkit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of event recorded in the audit trail.
type AuditAction string

const (
	AuditActionUserAdded       AuditAction = "user_added"
	AuditActionGroupAdded      AuditAction = "group_added"
	AuditActionPermissionAdded AuditAction = "permission_added"
	AuditActionRoleAdded       AuditAction = "role_added"
	AuditActionMembershipAdded AuditAction = "membership_added"
	AuditActionPermissionGrant AuditAction = "permission_granted"
	AuditActionRoleBound       AuditAction = "role_bound"
	AuditActionDecision        AuditAction = "decision"
)

// AuditEntry records one registration, binding or decision.
type AuditEntry struct {
	ID        string
	Timestamp time.Time
	Action    AuditAction

	// Subject of the event, depending on the action.
	Entity     string // entity involved (registrations, memberships, bindings, decisions)
	Group      string // group involved (memberships)
	Role       string // role involved (role events, bindings)
	Permission string // permission involved (permission events, decisions)

	// Decision outcome; meaningful only for AuditActionDecision.
	Allowed bool
}

// AuditFilter narrows AuditLog results. Zero fields match everything.
type AuditFilter struct {
	Action     AuditAction
	Entity     string
	Role       string
	Permission string
	Since      time.Time
	Until      time.Time
	Limit      int // defaults to 100
	Offset     int
}

const defaultAuditCapacity = 1024

// auditTrail is a bounded in-memory event log. The graph itself is never
// persisted, so the trail is a ring: once capacity is reached the oldest
// entries are dropped.
type auditTrail struct {
	mu       sync.Mutex
	entries  []AuditEntry
	capacity int
}

func newAuditTrail(capacity int) *auditTrail {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &auditTrail{
		entries:  make([]AuditEntry, 0, capacity),
		capacity: capacity,
	}
}

func (t *auditTrail) record(entry AuditEntry) {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == t.capacity {
		copy(t.entries, t.entries[1:])
		t.entries = t.entries[:len(t.entries)-1]
	}
	t.entries = append(t.entries, entry)
}

func (t *auditTrail) query(filter AuditFilter) []AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}

	var out []AuditEntry
	skipped := 0
	// Newest first.
	for i := len(t.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := t.entries[i]
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Entity != "" && e.Entity != filter.Entity {
			continue
		}
		if filter.Role != "" && e.Role != filter.Role {
			continue
		}
		if filter.Permission != "" && e.Permission != filter.Permission {
			continue
		}
		if !filter.Since.IsZero() && e.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && e.Timestamp.After(filter.Until) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, e)
	}
	return out
}

// AuditLog returns audit entries matching the filter, newest first. It
// returns nil when auditing is disabled (see WithAudit).
func (a *Authority) AuditLog(filter AuditFilter) []AuditEntry {
	if a.audit == nil {
		return nil
	}
	return a.audit.query(filter)
}

// Recording helpers. Each is a no-op unless the corresponding collaborator
// was enabled at construction.

func (a *Authority) recordRegistration(action AuditAction, subject string) {
	if a.metrics != nil {
		a.metrics.registrations.WithLabelValues(string(action)).Inc()
	}
	if a.audit == nil {
		return
	}
	entry := AuditEntry{Action: action}
	switch action {
	case AuditActionUserAdded, AuditActionGroupAdded:
		entry.Entity = subject
	case AuditActionRoleAdded:
		entry.Role = subject
	case AuditActionPermissionAdded:
		entry.Permission = subject
	}
	a.audit.record(entry)
}

func (a *Authority) recordMembership(user, group string) {
	if a.metrics != nil {
		a.metrics.registrations.WithLabelValues(string(AuditActionMembershipAdded)).Inc()
	}
	if a.audit == nil {
		return
	}
	a.audit.record(AuditEntry{
		Action: AuditActionMembershipAdded,
		Entity: user,
		Group:  group,
	})
}

func (a *Authority) recordGrant(permission, role string) {
	if a.metrics != nil {
		a.metrics.registrations.WithLabelValues(string(AuditActionPermissionGrant)).Inc()
	}
	if a.audit == nil {
		return
	}
	a.audit.record(AuditEntry{
		Action:     AuditActionPermissionGrant,
		Permission: permission,
		Role:       role,
	})
}

func (a *Authority) recordBinding(entity, role string) {
	if a.metrics != nil {
		a.metrics.registrations.WithLabelValues(string(AuditActionRoleBound)).Inc()
	}
	if a.audit == nil {
		return
	}
	a.audit.record(AuditEntry{
		Action: AuditActionRoleBound,
		Entity: entity,
		Role:   role,
	})
}

func (a *Authority) recordDecision(entity, permission string, allowed bool) {
	if a.metrics != nil {
		outcome := "denied"
		if allowed {
			outcome = "allowed"
		}
		a.metrics.decisions.WithLabelValues(outcome).Inc()
	}
	if a.audit == nil {
		return
	}
	a.audit.record(AuditEntry{
		Action:     AuditActionDecision,
		Entity:     entity,
		Permission: permission,
		Allowed:    allowed,
	})
}
