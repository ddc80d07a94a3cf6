package models

import (
	"time"

	familymodels "familyhub/internal/family/models"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
)

var (
	ErrInvitationNotFound       = dErrors.New(dErrors.CodeNotFound, "invitation not found")
	ErrInvitationExpired        = dErrors.New(dErrors.CodeInvalidState, "invitation has expired")
	ErrInvitationNotActionable  = dErrors.New(dErrors.CodeInvalidState, "invitation is no longer actionable")
	ErrInvitationAlreadyPending = dErrors.New(dErrors.CodeConflict, "an invitation is already pending for this email")
	ErrUserEmailMismatch        = dErrors.New(dErrors.CodeBadRequest, "this invitation was issued to a different email address")
	ErrUserAlreadyExists        = dErrors.New(dErrors.CodeConflict, "an account already exists for this email, sign in to accept the invitation")
	ErrFamilyMissing            = dErrors.New(dErrors.CodeIntegrity, "invitation references a family that does not exist")
)

// Status is the lifecycle state of an invitation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

func (s Status) String() string { return string(s) }

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusExpired || s == StatusRevoked
}

// Invitation is a token-bound offer of a role in one family to one email address.
// Records are never deleted; terminal invitations remain as an audit trail.
type Invitation struct {
	ID         id.InvitationID   `json:"id"`
	FamilyID   id.FamilyID       `json:"family_id"`
	Email      string            `json:"email"`
	Role       familymodels.Role `json:"role"`
	InvitedBy  id.UserID         `json:"invited_by"`
	Token      string            `json:"-"`
	Status     Status            `json:"status"`
	ExpiresAt  time.Time         `json:"expires_at"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	AcceptedBy *id.UserID        `json:"accepted_by,omitempty"`
	AcceptedAt *time.Time        `json:"accepted_at,omitempty"`
}

// NewInvitation builds a pending invitation. email must already be normalized.
func NewInvitation(
	invitationID id.InvitationID,
	familyID id.FamilyID,
	email string,
	role familymodels.Role,
	invitedBy id.UserID,
	token string,
	now, expiresAt time.Time,
) (*Invitation, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invitation email is required")
	}
	if !role.IsAssignable() {
		return nil, familymodels.ErrInvalidRole
	}
	if token == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invitation token is required")
	}
	if !expiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invitation must expire in the future")
	}
	return &Invitation{
		ID:        invitationID,
		FamilyID:  familyID,
		Email:     email,
		Role:      role,
		InvitedBy: invitedBy,
		Token:     token,
		Status:    StatusPending,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (i *Invitation) IsPending() bool { return i.Status == StatusPending }

// IsExpired reports whether the expiry has passed at now, whatever the stored status.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

// CanTransition validates a move out of the current status. Only pending
// invitations move; every terminal status is final.
func (i *Invitation) CanTransition(to Status) error {
	if i.Status != StatusPending {
		return ErrInvitationNotActionable
	}
	switch to {
	case StatusAccepted, StatusExpired, StatusRevoked:
		return nil
	}
	return ErrInvitationNotActionable
}

// Accept records acceptance by userID.
func (i *Invitation) Accept(userID id.UserID, now time.Time) error {
	if err := i.CanTransition(StatusAccepted); err != nil {
		return err
	}
	i.Status = StatusAccepted
	i.AcceptedBy = &userID
	i.AcceptedAt = &now
	i.UpdatedAt = now
	return nil
}

func (i *Invitation) Expire(now time.Time) error {
	if err := i.CanTransition(StatusExpired); err != nil {
		return err
	}
	i.Status = StatusExpired
	i.UpdatedAt = now
	return nil
}

func (i *Invitation) Revoke(now time.Time) error {
	if err := i.CanTransition(StatusRevoked); err != nil {
		return err
	}
	i.Status = StatusRevoked
	i.UpdatedAt = now
	return nil
}

// WasAcceptedBy reports whether userID accepted this invitation.
func (i *Invitation) WasAcceptedBy(userID id.UserID) bool {
	return i.Status == StatusAccepted && i.AcceptedBy != nil && *i.AcceptedBy == userID
}

func (i *Invitation) Clone() *Invitation {
	if i == nil {
		return nil
	}
	c := *i
	if i.AcceptedBy != nil {
		u := *i.AcceptedBy
		c.AcceptedBy = &u
	}
	if i.AcceptedAt != nil {
		t := *i.AcceptedAt
		c.AcceptedAt = &t
	}
	return &c
}

// PublicDetails is what an unauthenticated token holder may see.
type PublicDetails struct {
	Email          string            `json:"email"`
	Role           familymodels.Role `json:"role"`
	FamilyName     string            `json:"family_name"`
	IsExistingUser bool              `json:"is_existing_user"`
	ExpiresAt      time.Time         `json:"expires_at"`
}
