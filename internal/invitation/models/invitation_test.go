package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	familymodels "familyhub/internal/family/models"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *Invitation {
	t.Helper()
	inv, err := NewInvitation(id.NewInvitationID(), id.NewFamilyID(), "b@x.com",
		familymodels.RoleMember, id.NewUserID(), "tok", now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	return inv
}

func TestNewInvitation(t *testing.T) {
	inv := newPending(t)
	assert.Equal(t, StatusPending, inv.Status)
	assert.Nil(t, inv.AcceptedBy)

	_, err := NewInvitation(id.NewInvitationID(), id.NewFamilyID(), "b@x.com",
		familymodels.RolePrimaryUser, id.NewUserID(), "tok", now, now.Add(time.Hour))
	assert.ErrorIs(t, err, familymodels.ErrInvalidRole)

	_, err = NewInvitation(id.NewInvitationID(), id.NewFamilyID(), "b@x.com",
		familymodels.RoleMember, id.NewUserID(), "tok", now, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewInvitation(id.NewInvitationID(), id.NewFamilyID(), "",
		familymodels.RoleMember, id.NewUserID(), "tok", now, now.Add(time.Hour))
	assert.Error(t, err)
}

func TestTransitions(t *testing.T) {
	t.Run("accept records who and when", func(t *testing.T) {
		inv := newPending(t)
		userID := id.NewUserID()
		later := now.Add(time.Hour)

		require.NoError(t, inv.Accept(userID, later))
		assert.Equal(t, StatusAccepted, inv.Status)
		assert.True(t, inv.WasAcceptedBy(userID))
		assert.False(t, inv.WasAcceptedBy(id.NewUserID()))
		assert.Equal(t, later, *inv.AcceptedAt)
	})

	t.Run("terminal states reject every transition", func(t *testing.T) {
		for _, terminal := range []func(*Invitation) error{
			func(i *Invitation) error { return i.Accept(id.NewUserID(), now) },
			func(i *Invitation) error { return i.Expire(now) },
			func(i *Invitation) error { return i.Revoke(now) },
		} {
			inv := newPending(t)
			require.NoError(t, terminal(inv))
			require.True(t, inv.Status.IsTerminal())

			assert.ErrorIs(t, inv.Accept(id.NewUserID(), now), ErrInvitationNotActionable)
			assert.ErrorIs(t, inv.Expire(now), ErrInvitationNotActionable)
			assert.ErrorIs(t, inv.Revoke(now), ErrInvitationNotActionable)
		}
	})

	t.Run("pending is the only non terminal status", func(t *testing.T) {
		assert.False(t, StatusPending.IsTerminal())
		assert.ErrorIs(t, newPending(t).CanTransition(StatusPending), ErrInvitationNotActionable)
	})
}

func TestIsExpired(t *testing.T) {
	inv := newPending(t)
	assert.False(t, inv.IsExpired(now))
	assert.False(t, inv.IsExpired(inv.ExpiresAt))
	assert.True(t, inv.IsExpired(inv.ExpiresAt.Add(time.Nanosecond)))
}

func TestClone(t *testing.T) {
	inv := newPending(t)
	require.NoError(t, inv.Accept(id.NewUserID(), now))

	c := inv.Clone()
	*c.AcceptedBy = id.NewUserID()
	c.Status = StatusRevoked

	assert.Equal(t, StatusAccepted, inv.Status)
	assert.NotEqual(t, *c.AcceptedBy, *inv.AcceptedBy)
}
