package authkit

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the bulk-configuration shape for seeding an Authority. Every
// key is optional; sections are applied in declaration order, so a binding
// that references a role or entity not yet registered fails with the
// corresponding not-found error.
type Config struct {
	Roles              []string           `yaml:"roles" json:"roles"`
	Permissions        []ConfigPermission `yaml:"permissions" json:"permissions"`
	Users              []string           `yaml:"users" json:"users"`
	Groups             []string           `yaml:"groups" json:"groups"`
	RoleBindings       []ConfigBinding    `yaml:"role_bindings" json:"role_bindings"`
	UserToGroup        []ConfigMembership `yaml:"user_to_group" json:"user_to_group"`
	PermissionsToRoles []ConfigGrant      `yaml:"permissions_to_roles" json:"permissions_to_roles"`
}

// ConfigPermission declares a permission by name and level literal.
type ConfigPermission struct {
	Name  string `yaml:"name" json:"name"`
	Level string `yaml:"level" json:"level"`
}

// ConfigBinding grants a role to an entity, given in prefixed
// "user:"/"group:" form.
type ConfigBinding struct {
	Role   string `yaml:"role" json:"role"`
	Entity string `yaml:"entity" json:"entity"`
}

// ConfigMembership places a user into a group, both given by bare name.
type ConfigMembership struct {
	User  string `yaml:"user" json:"user"`
	Group string `yaml:"group" json:"group"`
}

// ConfigGrant attaches a "name:LEVEL" permission to a role.
type ConfigGrant struct {
	Permission string `yaml:"permission" json:"permission"`
	Role       string `yaml:"role" json:"role"`
}

// LoadConfig decodes a Config from YAML (JSON being a YAML subset, both
// work).
func LoadConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("authkit: decoding config: %w", err)
	}
	return &cfg, nil
}

// Apply registers the configuration into the Authority, section by section:
// roles, permissions, users, groups, role bindings, group memberships, then
// permission grants. The first error stops processing; earlier sections
// remain applied.
func (c *Config) Apply(a *Authority) error {
	for _, name := range c.Roles {
		a.AddRole(name)
	}
	for _, p := range c.Permissions {
		level, err := ParseLevel(p.Level)
		if err != nil {
			return err
		}
		a.AddPermission(p.Name, level)
	}
	for _, name := range c.Users {
		if err := a.AddUser(name); err != nil {
			return err
		}
	}
	for _, name := range c.Groups {
		if err := a.AddGroup(name); err != nil {
			return err
		}
	}
	for _, b := range c.RoleBindings {
		if err := a.BindRoleToEntity(ByRoleName(b.Role), ByEntityName(b.Entity)); err != nil {
			return err
		}
	}
	for _, m := range c.UserToGroup {
		if err := a.AddUserToGroup(ByEntityName(m.User), ByEntityName(m.Group)); err != nil {
			return err
		}
	}
	for _, g := range c.PermissionsToRoles {
		if err := a.AttachPermissionToRole(ByPermissionKey(g.Permission), ByRoleName(g.Role)); err != nil {
			return err
		}
	}
	return nil
}
