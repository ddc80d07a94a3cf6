package models

import "strings"

// Role is a member's standing inside a family.
type Role string

const (
	// RolePrimaryUser is held by the creator only and can never be assigned,
	// transferred or removed.
	RolePrimaryUser Role = "primary_user"
	RoleAdmin       Role = "admin"
	RoleMember      Role = "member"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RolePrimaryUser, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// IsAssignable reports whether the role may be granted after creation.
func (r Role) IsAssignable() bool {
	return r == RoleAdmin || r == RoleMember
}

// ParseAssignableRole parses the role offered by an invitation or direct add.
// A blank role defaults to RoleMember.
func ParseAssignableRole(s string) (Role, error) {
	if strings.TrimSpace(s) == "" {
		return RoleMember, nil
	}
	return ParseRole(s)
}

// ParseRole parses an explicitly requested role change. Blank input is
// rejected like any other non-assignable role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsAssignable() {
		return "", ErrInvalidRole
	}
	return r, nil
}
