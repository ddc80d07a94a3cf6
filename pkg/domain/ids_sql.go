package domain

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

// Value and Scan let typed ids cross database/sql as plain UUIDs.

func (u UserID) Value() (driver.Value, error)       { return uuid.UUID(u).Value() }
func (f FamilyID) Value() (driver.Value, error)     { return uuid.UUID(f).Value() }
func (i InvitationID) Value() (driver.Value, error) { return uuid.UUID(i).Value() }

func (u *UserID) Scan(src any) error       { return (*uuid.UUID)(u).Scan(src) }
func (f *FamilyID) Scan(src any) error     { return (*uuid.UUID)(f).Scan(src) }
func (i *InvitationID) Scan(src any) error { return (*uuid.UUID)(i).Scan(src) }

func (u *UserID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(u).UnmarshalText(b) }
func (f *FamilyID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(f).UnmarshalText(b) }
func (i *InvitationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(i).UnmarshalText(b) }
