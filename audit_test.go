package authkit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuditDisabled tests that AuditLog reports nil without WithAudit
func TestAuditDisabled(t *testing.T) {
	a := New()
	require.NoError(t, a.AddUser("alice"))
	assert.Nil(t, a.AuditLog(AuditFilter{}))
}

// TestAuditRecording tests that every mutation and decision is recorded
func TestAuditRecording(t *testing.T) {
	a := New(WithAudit(64))
	require.NoError(t, a.AddUser("alice"))
	require.NoError(t, a.AddGroup("engineering"))
	require.NoError(t, a.AddUserToGroup(ByEntityName("alice"), ByEntityName("engineering")))
	a.AddPermission("documents", LevelRead)
	a.AddRole("reader")
	require.NoError(t, a.AttachPermissionToRole(ByPermissionKey("documents:READ"), ByRoleName("reader")))
	require.NoError(t, a.BindRoleToEntity(ByRoleName("reader"), ByEntityName("user:alice")))

	_, err := a.CanEntityDo(ByEntityName("user:alice"), ByPermissionKey("documents:READ"))
	require.NoError(t, err)

	entries := a.AuditLog(AuditFilter{})
	require.Len(t, entries, 8)

	// Newest first.
	assert.Equal(t, AuditActionDecision, entries[0].Action)
	assert.Equal(t, "user:alice", entries[0].Entity)
	assert.Equal(t, "documents:READ", entries[0].Permission)
	assert.True(t, entries[0].Allowed)

	assert.Equal(t, AuditActionUserAdded, entries[7].Action)
	assert.Equal(t, "user:alice", entries[7].Entity)

	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

// TestAuditFilter tests filtering and pagination
func TestAuditFilter(t *testing.T) {
	a := New(WithAudit(64))
	a.AddPermission("documents", LevelRead)
	a.AddPermission("status", LevelNone)
	require.NoError(t, a.AddUser("alice"))

	for i := 0; i < 3; i++ {
		_, err := a.CanEntityDo(ByEntityName("user:alice"), ByPermissionKey("status:NONE"))
		require.NoError(t, err)
	}
	_, err := a.CanEntityDo(ByEntityName("user:alice"), ByPermissionKey("documents:READ"))
	require.NoError(t, err)

	t.Run("By action", func(t *testing.T) {
		entries := a.AuditLog(AuditFilter{Action: AuditActionDecision})
		assert.Len(t, entries, 4)
	})

	t.Run("By permission", func(t *testing.T) {
		entries := a.AuditLog(AuditFilter{
			Action:     AuditActionDecision,
			Permission: "status:NONE",
		})
		assert.Len(t, entries, 3)
	})

	t.Run("By entity", func(t *testing.T) {
		// NONE decisions never resolve the entity, so only the denied READ
		// decision names alice.
		entries := a.AuditLog(AuditFilter{
			Action: AuditActionDecision,
			Entity: "user:alice",
		})
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Allowed)
	})

	t.Run("Limit and offset", func(t *testing.T) {
		first := a.AuditLog(AuditFilter{Action: AuditActionDecision, Limit: 2})
		require.Len(t, first, 2)

		rest := a.AuditLog(AuditFilter{Action: AuditActionDecision, Limit: 2, Offset: 2})
		require.Len(t, rest, 2)
		assert.NotEqual(t, first[0].ID, rest[0].ID)
	})
}

// TestAuditCapacity tests that the trail drops oldest entries at capacity
func TestAuditCapacity(t *testing.T) {
	a := New(WithAudit(5))
	for i := 0; i < 10; i++ {
		require.NoError(t, a.AddUser(fmt.Sprintf("u%d", i)))
	}

	entries := a.AuditLog(AuditFilter{})
	require.Len(t, entries, 5)
	assert.Equal(t, "user:u9", entries[0].Entity)
	assert.Equal(t, "user:u5", entries[4].Entity)
}
