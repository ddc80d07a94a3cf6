package storage

import (
	"fmt"

	"familyhub/pkg/platform/sentinel"
)

var (
	// ErrPendingInvitationExists is returned by InvitationStore.Create when a
	// pending invitation already exists for the same family and email.
	ErrPendingInvitationExists = fmt.Errorf("%w: pending invitation exists", sentinel.ErrAlreadyUsed)

	// ErrTokenTaken is returned when a freshly minted token collides.
	ErrTokenTaken = fmt.Errorf("%w: invitation token taken", sentinel.ErrConflict)
)
