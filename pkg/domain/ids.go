// Package domain holds typed identifiers shared across modules.
//
// Each identifier wraps a UUID so the compiler rejects passing a FamilyID where a
// UserID is expected. Parse functions are the only sanctioned way to build an ID
// from untrusted input.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "familyhub/pkg/domain-errors"
)

// maxIDLength bounds untrusted input before it reaches uuid.Parse.
const maxIDLength = 64

type (
	UserID       uuid.UUID
	FamilyID     uuid.UUID
	InvitationID uuid.UUID
)

func (u UserID) String() string { return uuid.UUID(u).String() }
func (u UserID) IsNil() bool    { return uuid.UUID(u) == uuid.Nil }

func (f FamilyID) String() string { return uuid.UUID(f).String() }
func (f FamilyID) IsNil() bool    { return uuid.UUID(f) == uuid.Nil }

func (i InvitationID) String() string { return uuid.UUID(i).String() }
func (i InvitationID) IsNil() bool    { return uuid.UUID(i) == uuid.Nil }

func (u UserID) MarshalText() ([]byte, error)       { return []byte(u.String()), nil }
func (f FamilyID) MarshalText() ([]byte, error)     { return []byte(f.String()), nil }
func (i InvitationID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func NewUserID() UserID             { return UserID(uuid.New()) }
func NewFamilyID() FamilyID         { return FamilyID(uuid.New()) }
func NewInvitationID() InvitationID { return InvitationID(uuid.New()) }

// ParseUserID parses a user identifier from untrusted input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

// ParseFamilyID parses a family identifier from untrusted input.
func ParseFamilyID(s string) (FamilyID, error) {
	u, err := parseUUID(s, "family ID")
	return FamilyID(u), err
}

// ParseInvitationID parses an invitation identifier from untrusted input.
func ParseInvitationID(s string) (InvitationID, error) {
	u, err := parseUUID(s, "invitation ID")
	return InvitationID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return u, nil
}
