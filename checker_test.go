package authkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChecker tests per-entity permission checks
func TestChecker(t *testing.T) {
	a := newTestAuthority(t)

	t.Run("Unknown entity", func(t *testing.T) {
		_, err := a.Checker(ByEntityName("user:nobody"))
		assert.True(t, IsEntityNotFound(err))
	})

	t.Run("Can", func(t *testing.T) {
		checker, err := a.Checker(ByEntityName("user:alice"))
		require.NoError(t, err)

		assert.Equal(t, "user:alice", checker.EntityName())
		assert.True(t, checker.Can(ByPermissionKey("documents:READ")))
		assert.False(t, checker.Can(ByPermissionKey("documents:WRITE")))
		assert.False(t, checker.Can(ByPermissionKey("unknown:READ")), "lookup failures report false")
	})

	t.Run("CanAny and CanAll", func(t *testing.T) {
		checker, err := a.Checker(ByEntityName("user:bob"))
		require.NoError(t, err)

		assert.True(t, checker.CanAny(
			ByPermissionKey("documents:WRITE"),
			ByPermissionKey("unknown:READ"),
		))
		assert.True(t, checker.CanAll(
			ByPermissionKey("documents:READ"),
			ByPermissionKey("documents:WRITE"),
		))
		assert.False(t, checker.CanAll(
			ByPermissionKey("documents:READ"),
			ByPermissionKey("unknown:READ"),
		))
		assert.False(t, checker.CanAny())
		assert.True(t, checker.CanAll())
	})

	t.Run("Roles are deduplicated", func(t *testing.T) {
		require.NoError(t, a.BindRoleToEntity(ByRoleName("reader"), ByEntityName("user:alice")))

		checker, err := a.Checker(ByEntityName("user:alice"))
		require.NoError(t, err)
		assert.Equal(t, []string{"reader"}, checker.Roles())
	})

	t.Run("Permissions are deduplicated", func(t *testing.T) {
		checker, err := a.Checker(ByEntityName("user:alice"))
		require.NoError(t, err)

		perms := checker.Permissions()
		require.Len(t, perms, 1)
		assert.Equal(t, "documents:READ", perms[0].Key())
	})

	t.Run("IsEmpty", func(t *testing.T) {
		require.NoError(t, a.AddUser("carol"))

		checker, err := a.Checker(ByEntityName("user:carol"))
		require.NoError(t, err)
		assert.True(t, checker.IsEmpty())

		checker, err = a.Checker(ByEntityName("user:alice"))
		require.NoError(t, err)
		assert.False(t, checker.IsEmpty())
	})
}
