package authkit

import (
	"fmt"
	"regexp"
)

// Prefixes for the two entity namespaces. The namespaces are disjoint:
// "user:ops" and "group:ops" are distinct entities.
const (
	UserPrefix  = "user:"
	GroupPrefix = "group:"
)

// entityNamePattern validates fully-prefixed entity names. Raw names that
// already carry a prefix fail the check because ':' is not in the class.
var entityNamePattern = regexp.MustCompile(`^(user|group):[A-Za-z0-9_]+$`)

// Entity is the subject of an access decision: a User or a Group.
type Entity interface {
	// Name returns the unique, prefixed entity name.
	Name() string
}

func validateEntityName(name string) error {
	if !entityNamePattern.MatchString(name) {
		return NewError(ErrInvalidName,
			fmt.Sprintf("%q does not match %s", name, entityNamePattern.String())).
			WithEntity(name)
	}
	return nil
}

// User is a single principal. If the same person interacts over several
// interfaces, create a user per interface and collect them in a group.
type User struct {
	name string
}

// NewUser creates a User from a raw name, prefixing it with "user:".
func NewUser(raw string) (*User, error) {
	name := UserPrefix + raw
	if err := validateEntityName(name); err != nil {
		return nil, err
	}
	return &User{name: name}, nil
}

// Name returns the prefixed user name, e.g. "user:alice".
func (u *User) Name() string {
	return u.name
}

// Group is an entity collecting multiple users.
type Group struct {
	name  string
	users map[string]*User
}

// NewGroup creates an empty Group from a raw name, prefixing it with
// "group:".
func NewGroup(raw string) (*Group, error) {
	name := GroupPrefix + raw
	if err := validateEntityName(name); err != nil {
		return nil, err
	}
	return &Group{name: name, users: make(map[string]*User)}, nil
}

// Name returns the prefixed group name, e.g. "group:engineering".
func (g *Group) Name() string {
	return g.name
}

// AddUser adds a user to the group. Re-adding overwrites.
func (g *Group) AddUser(u *User) {
	g.users[u.Name()] = u
}

// HasUser reports whether the group contains a user by its prefixed name.
func (g *Group) HasUser(name string) bool {
	_, ok := g.users[name]
	return ok
}

// Users returns the users in the group.
func (g *Group) Users() []*User {
	users := make([]*User, 0, len(g.users))
	for _, u := range g.users {
		users = append(users, u)
	}
	return users
}

// UserNames returns the prefixed names of the users in the group.
func (g *Group) UserNames() []string {
	names := make([]string, 0, len(g.users))
	for name := range g.users {
		names = append(names, name)
	}
	return names
}
