package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Authorization decisions are always
// explicit allow-list membership checks; there is no implicit privilege
// hierarchy between roles.
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleHR         Role = "hr"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
)

// AllRoles returns every defined role, highest privilege first.
func AllRoles() []Role {
	return []Role{RoleSuperAdmin, RoleHR, RoleManager, RoleEmployee}
}

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(s))) {
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	case RoleHR:
		return RoleHR, nil
	case RoleManager:
		return RoleManager, nil
	case RoleEmployee:
		return RoleEmployee, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// RoleSet is a per-operation allow-list.
type RoleSet map[Role]struct{}

// NewRoleSet builds an allow-list from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether the role is in the allow-list.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}
