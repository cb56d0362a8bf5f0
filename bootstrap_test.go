package authkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bootstrapYAML = `
roles:
  - reader
  - writer
permissions:
  - {name: documents, level: READ}
  - {name: documents, level: WRITE}
  - {name: status, level: NONE}
users:
  - alice
  - bob
groups:
  - engineering
role_bindings:
  - {role: reader, entity: user:alice}
  - {role: writer, entity: group:engineering}
user_to_group:
  - {user: bob, group: engineering}
permissions_to_roles:
  - {permission: documents:READ, role: reader}
  - {permission: documents:WRITE, role: writer}
`

// TestLoadConfig tests YAML decoding of the bulk-configuration shape
func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig([]byte(bootstrapYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"reader", "writer"}, cfg.Roles)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Users)
	assert.Equal(t, []string{"engineering"}, cfg.Groups)
	require.Len(t, cfg.Permissions, 3)
	assert.Equal(t, ConfigPermission{Name: "documents", Level: "READ"}, cfg.Permissions[0])
	require.Len(t, cfg.RoleBindings, 2)
	assert.Equal(t, ConfigBinding{Role: "writer", Entity: "group:engineering"}, cfg.RoleBindings[1])
	require.Len(t, cfg.UserToGroup, 1)
	assert.Equal(t, ConfigMembership{User: "bob", Group: "engineering"}, cfg.UserToGroup[0])
	require.Len(t, cfg.PermissionsToRoles, 2)
}

// TestLoadConfig_JSON tests that JSON input decodes as well
func TestLoadConfig_JSON(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"roles": ["reader"], "users": ["alice"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"reader"}, cfg.Roles)
	assert.Equal(t, []string{"alice"}, cfg.Users)
}

// TestLoadConfig_Invalid tests decode failures
func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig([]byte("roles: {not: a list}"))
	assert.Error(t, err)
}

// TestConfigApply tests that an applied config drives decisions
func TestConfigApply(t *testing.T) {
	cfg, err := LoadConfig([]byte(bootstrapYAML))
	require.NoError(t, err)

	a := New()
	require.NoError(t, cfg.Apply(a))

	ok, err := a.CanEntityDo(ByEntityName("user:alice"), ByPermissionKey("documents:READ"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.CanEntityDo(ByEntityName("user:bob"), ByPermissionKey("documents:WRITE"))
	require.NoError(t, err)
	assert.True(t, ok, "bob writes through group:engineering")

	ok, err = a.CanEntityDo(ByEntityName("user:alice"), ByPermissionKey("documents:WRITE"))
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestConfigApply_Errors tests section-order failures
func TestConfigApply_Errors(t *testing.T) {
	t.Run("Binding references unknown role", func(t *testing.T) {
		cfg := &Config{
			Users:        []string{"alice"},
			RoleBindings: []ConfigBinding{{Role: "reader", Entity: "user:alice"}},
		}
		err := cfg.Apply(New())
		assert.True(t, IsRoleNotFound(err))
	})

	t.Run("Binding references unknown entity", func(t *testing.T) {
		cfg := &Config{
			Roles:        []string{"reader"},
			RoleBindings: []ConfigBinding{{Role: "reader", Entity: "user:alice"}},
		}
		err := cfg.Apply(New())
		assert.True(t, IsEntityNotFound(err))
	})

	t.Run("Grant references unknown permission", func(t *testing.T) {
		cfg := &Config{
			Roles:              []string{"reader"},
			PermissionsToRoles: []ConfigGrant{{Permission: "documents:READ", Role: "reader"}},
		}
		err := cfg.Apply(New())
		assert.True(t, IsPermissionNotFound(err))
	})

	t.Run("Bad level literal", func(t *testing.T) {
		cfg := &Config{
			Permissions: []ConfigPermission{{Name: "documents", Level: "ADMIN"}},
		}
		err := cfg.Apply(New())
		assert.True(t, IsInvalidPermission(err))
	})

	t.Run("Bad user name", func(t *testing.T) {
		cfg := &Config{Users: []string{"not a name"}}
		err := cfg.Apply(New())
		assert.True(t, IsInvalidName(err))
	})

	t.Run("Earlier sections stay applied", func(t *testing.T) {
		cfg := &Config{
			Users:        []string{"alice"},
			RoleBindings: []ConfigBinding{{Role: "reader", Entity: "user:alice"}},
		}
		a := New()
		require.Error(t, cfg.Apply(a))

		_, err := a.ResolveEntity(ByEntityName("user:alice"))
		assert.NoError(t, err)
	})
}
