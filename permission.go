package authkit

import (
	"fmt"
	"strings"
)

// Level is the ordered access level of a permission.
// Higher levels include the lower ones: an entity holding WRITE on a name
// satisfies a READ requirement on the same name.
type Level int

// Permission levels, in increasing order of access.
const (
	// LevelNone marks an operation as public. A requirement at NONE is
	// always satisfied; never grant it to an entity.
	LevelNone Level = iota
	LevelRead
	LevelWrite
	LevelExecute
)

var levelNames = map[Level]string{
	LevelNone:    "NONE",
	LevelRead:    "READ",
	LevelWrite:   "WRITE",
	LevelExecute: "EXECUTE",
}

// String returns the level literal ("NONE", "READ", "WRITE", "EXECUTE").
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts a level literal to a Level.
func ParseLevel(s string) (Level, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelNone, NewError(ErrInvalidPermission, fmt.Sprintf("unknown level %q", s))
}

// Permission is an immutable named capability with a level. Permissions are
// identified system-wide by their Key, "name:LEVEL", so the same name can be
// registered at several levels.
type Permission struct {
	Name  string
	Level Level
}

// NewPermission creates a Permission.
func NewPermission(name string, level Level) Permission {
	return Permission{Name: name, Level: level}
}

// Key returns the storage identity of the permission, "name:LEVEL".
func (p Permission) Key() string {
	return p.Name + ":" + p.Level.String()
}

// String returns the same representation as Key.
func (p Permission) String() string {
	return p.Key()
}

// Satisfies reports whether this (held) permission satisfies the required
// one. Satisfaction is asymmetric: the names must match and the held level
// must be at least the required level.
func (p Permission) Satisfies(required Permission) bool {
	return p.Name == required.Name && p.Level >= required.Level
}

// ParsePermission parses a "name:LEVEL" string into a Permission.
// The level must be one of the four enumerated literals.
func ParsePermission(s string) (Permission, error) {
	name, levelName, found := strings.Cut(s, ":")
	if !found || name == "" {
		return Permission{}, NewError(ErrInvalidPermission,
			fmt.Sprintf("%q is not in name:LEVEL form", s))
	}
	level, err := ParseLevel(levelName)
	if err != nil {
		return Permission{}, err
	}
	return Permission{Name: name, Level: level}, nil
}
