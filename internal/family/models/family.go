package models

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
)

const maxFamilyNameLength = 100

var (
	ErrFamilyNotFound          = dErrors.New(dErrors.CodeNotFound, "family not found")
	ErrConcurrentUpdate        = dErrors.New(dErrors.CodeConflict, "family was modified concurrently, retry the request")
	ErrAlreadyMember           = dErrors.New(dErrors.CodeConflict, "user is already a member of this family")
	ErrNotAFamilyMember        = dErrors.New(dErrors.CodeNotFound, "member not found in this family")
	ErrCannotRemoveCreator     = dErrors.New(dErrors.CodeBadRequest, "the family creator cannot be removed")
	ErrCannotModifyPrimaryUser = dErrors.New(dErrors.CodeBadRequest, "the primary user's role cannot be changed")
	ErrInvalidRole             = dErrors.New(dErrors.CodeValidation, "role must be admin or member")
)

// Member is a user's entry in a family roster. It has no identity of its own.
type Member struct {
	UserID   id.UserID `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	// Permissions is reserved for per-member grants and is not evaluated yet.
	Permissions []string `json:"permissions,omitempty"`
}

// Family is the aggregate root owning the membership roster.
//
// Invariants:
//   - Members is never empty; the creator is enrolled by NewFamily
//   - Members contains each UserID at most once
//   - exactly one member holds RolePrimaryUser and it is CreatorID
//   - CreatorID and CreatedAt are immutable
//
// Members is only changed through the Can*/Apply* methods below. Stores persist the
// whole aggregate and bump Version on every write.
type Family struct {
	ID        id.FamilyID `json:"id"`
	Name      string      `json:"name"`
	CreatorID id.UserID   `json:"creator_id"`
	Members   []Member    `json:"members"`
	Settings  Settings    `json:"settings"`
	Version   int64       `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewFamily builds a family with its creator as the sole primary user.
func NewFamily(familyID id.FamilyID, name string, creatorID id.UserID, now time.Time) (*Family, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if creatorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "family creator is required")
	}
	return &Family{
		ID:        familyID,
		Name:      name,
		CreatorID: creatorID,
		Members: []Member{{
			UserID:   creatorID,
			Role:     RolePrimaryUser,
			JoinedAt: now,
		}},
		Settings:  DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "family name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxFamilyNameLength {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "family name must be 100 characters or less")
	}
	return name, nil
}

func (f *Family) memberIndex(userID id.UserID) int {
	return slices.IndexFunc(f.Members, func(m Member) bool { return m.UserID == userID })
}

// IsMember reports whether userID is on the roster.
func (f *Family) IsMember(userID id.UserID) bool {
	return f.memberIndex(userID) >= 0
}

// Member returns a copy of the roster entry for userID.
func (f *Family) Member(userID id.UserID) (Member, bool) {
	i := f.memberIndex(userID)
	if i < 0 {
		return Member{}, false
	}
	return f.Members[i], true
}

// RoleOf returns the role of userID, or "" when not a member.
func (f *Family) RoleOf(userID id.UserID) Role {
	m, ok := f.Member(userID)
	if !ok {
		return ""
	}
	return m.Role
}

func (f *Family) IsCreator(userID id.UserID) bool {
	return !userID.IsNil() && f.CreatorID == userID
}

// CanAddMember validates that userID can join with role.
func (f *Family) CanAddMember(userID id.UserID, role Role) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user ID is required")
	}
	if !role.IsAssignable() {
		return ErrInvalidRole
	}
	if f.IsMember(userID) {
		return ErrAlreadyMember
	}
	return nil
}

// ApplyAddMember appends the member. Call CanAddMember first.
func (f *Family) ApplyAddMember(userID id.UserID, role Role, now time.Time) {
	f.Members = append(f.Members, Member{UserID: userID, Role: role, JoinedAt: now})
	f.UpdatedAt = now
}

// AddMember validates and appends in one call.
// Prefer CanAddMember + ApplyAddMember inside store Execute callbacks.
func (f *Family) AddMember(userID id.UserID, role Role, now time.Time) error {
	if err := f.CanAddMember(userID, role); err != nil {
		return err
	}
	f.ApplyAddMember(userID, role, now)
	return nil
}

// CanRemoveMember validates that userID can leave the roster.
func (f *Family) CanRemoveMember(userID id.UserID) error {
	m, ok := f.Member(userID)
	if !ok {
		return ErrNotAFamilyMember
	}
	if f.IsCreator(userID) || m.Role == RolePrimaryUser {
		return ErrCannotRemoveCreator
	}
	return nil
}

// ApplyRemoval drops userID from the roster. Call CanRemoveMember first.
func (f *Family) ApplyRemoval(userID id.UserID, now time.Time) {
	f.Members = slices.DeleteFunc(f.Members, func(m Member) bool { return m.UserID == userID })
	f.UpdatedAt = now
}

func (f *Family) RemoveMember(userID id.UserID, now time.Time) error {
	if err := f.CanRemoveMember(userID); err != nil {
		return err
	}
	f.ApplyRemoval(userID, now)
	return nil
}

// CanChangeRole validates a role change for userID.
func (f *Family) CanChangeRole(userID id.UserID, role Role) error {
	if !role.IsAssignable() {
		return ErrInvalidRole
	}
	m, ok := f.Member(userID)
	if !ok {
		return ErrNotAFamilyMember
	}
	if m.Role == RolePrimaryUser {
		return ErrCannotModifyPrimaryUser
	}
	return nil
}

// ApplyRoleChange overwrites the role in place. Call CanChangeRole first.
func (f *Family) ApplyRoleChange(userID id.UserID, role Role, now time.Time) {
	if i := f.memberIndex(userID); i >= 0 {
		f.Members[i].Role = role
		f.UpdatedAt = now
	}
}

func (f *Family) ChangeMemberRole(userID id.UserID, role Role, now time.Time) error {
	if err := f.CanChangeRole(userID, role); err != nil {
		return err
	}
	f.ApplyRoleChange(userID, role, now)
	return nil
}

// Rename validates and applies a new family name.
func (f *Family) Rename(name string, now time.Time) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	f.Name = name
	f.UpdatedAt = now
	return nil
}

// CheckInvariants verifies the roster invariants. Stores call it before every
// write so a violating aggregate is never persisted.
func (f *Family) CheckInvariants() error {
	if len(f.Members) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "family has no members")
	}
	seen := make(map[id.UserID]struct{}, len(f.Members))
	primaries := 0
	for _, m := range f.Members {
		if _, dup := seen[m.UserID]; dup {
			return dErrors.New(dErrors.CodeInvariantViolation, "duplicate family member")
		}
		seen[m.UserID] = struct{}{}
		if !m.Role.IsValid() {
			return dErrors.New(dErrors.CodeInvariantViolation, "member has an unknown role")
		}
		if m.Role == RolePrimaryUser {
			primaries++
			if m.UserID != f.CreatorID {
				return dErrors.New(dErrors.CodeInvariantViolation, "primary user must be the creator")
			}
		}
	}
	if primaries != 1 {
		return dErrors.New(dErrors.CodeInvariantViolation, "family must have exactly one primary user")
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (f *Family) Clone() *Family {
	if f == nil {
		return nil
	}
	c := *f
	c.Members = make([]Member, len(f.Members))
	for i, m := range f.Members {
		c.Members[i] = m
		c.Members[i].Permissions = slices.Clone(m.Permissions)
	}
	return &c
}
