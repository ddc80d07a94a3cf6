// Package policy is the membership guard: a pure decision over a family snapshot,
// the acting user and the operation requested. It performs no I/O.
package policy

import (
	"familyhub/internal/family/models"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
)

// Operation names a guarded family action.
type Operation string

const (
	OpViewFamily       Operation = "view_family"
	OpUpdateFamily     Operation = "update_family"
	OpInvite           Operation = "create_invitation"
	OpListInvitations  Operation = "list_invitations"
	OpRevokeInvitation Operation = "revoke_invitation"
	OpAddMember        Operation = "add_member"
	OpRemoveMember     Operation = "remove_member"
	OpChangeRole       Operation = "change_member_role"
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone                    Reason = ""
	ReasonNotMember               Reason = "not_member"
	ReasonNotCreator              Reason = "not_creator"
	ReasonCreatorCannotRemoveSelf Reason = "creator_cannot_remove_self"
	ReasonTargetIsPrimaryUser     Reason = "target_is_primary_user"
	ReasonTargetNotMember         Reason = "target_not_member"
)

var (
	ErrNotMember  = dErrors.New(dErrors.CodeForbidden, "you are not a member of this family")
	ErrNotCreator = dErrors.New(dErrors.CodeForbidden, "only the family creator can perform this action")
)

// Decision is the guard's verdict.
type Decision struct {
	Allowed bool
	Op      Operation
	Reason  Reason
}

func allow(op Operation) Decision { return Decision{Allowed: true, Op: op} }

func deny(op Operation, reason Reason) Decision {
	return Decision{Op: op, Reason: reason}
}

// Err maps a denial to the coded error the transport layer understands. It
// returns nil for allowed decisions.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonNotMember:
		return ErrNotMember
	case ReasonNotCreator:
		return ErrNotCreator
	case ReasonCreatorCannotRemoveSelf:
		return models.ErrCannotRemoveCreator
	case ReasonTargetIsPrimaryUser:
		if d.Op == OpRemoveMember {
			return models.ErrCannotRemoveCreator
		}
		return models.ErrCannotModifyPrimaryUser
	case ReasonTargetNotMember:
		return models.ErrNotAFamilyMember
	default:
		return dErrors.New(dErrors.CodeForbidden, "operation not permitted")
	}
}

// creatorOnly lists operations reserved for the family creator. Admins hold no
// extra authority yet.
var creatorOnly = map[Operation]bool{
	OpUpdateFamily:     true,
	OpInvite:           true,
	OpListInvitations:  true,
	OpRevokeInvitation: true,
	OpAddMember:        true,
	OpRemoveMember:     true,
	OpChangeRole:       true,
}

// CanPerform decides whether actor may run op on family. target is the member the
// operation acts on and is ignored by operations without one.
func CanPerform(family *models.Family, actor id.UserID, op Operation, target id.UserID) Decision {
	if family == nil || actor.IsNil() || !family.IsMember(actor) {
		return deny(op, ReasonNotMember)
	}
	if op == OpViewFamily {
		return allow(op)
	}
	if creatorOnly[op] && !family.IsCreator(actor) {
		return deny(op, ReasonNotCreator)
	}

	switch op {
	case OpRemoveMember:
		if target == actor {
			return deny(op, ReasonCreatorCannotRemoveSelf)
		}
		return checkTarget(family, op, target)
	case OpChangeRole:
		return checkTarget(family, op, target)
	}

	if !creatorOnly[op] {
		return deny(op, ReasonNotCreator)
	}
	return allow(op)
}

func checkTarget(family *models.Family, op Operation, target id.UserID) Decision {
	m, ok := family.Member(target)
	if !ok {
		return deny(op, ReasonTargetNotMember)
	}
	if m.Role == models.RolePrimaryUser || family.IsCreator(target) {
		return deny(op, ReasonTargetIsPrimaryUser)
	}
	return allow(op)
}
