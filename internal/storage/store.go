package storage

import (
	"context"

	familymodels "familyhub/internal/family/models"
	invitationmodels "familyhub/internal/invitation/models"
	id "familyhub/pkg/domain"
)

// FamilyStore persists family aggregates. Implementations return
// sentinel.ErrNotFound for missing families and bump Version on every write.
type FamilyStore interface {
	Create(ctx context.Context, family *familymodels.Family) error
	FindByID(ctx context.Context, familyID id.FamilyID) (*familymodels.Family, error)
	ListByMember(ctx context.Context, userID id.UserID) ([]*familymodels.Family, error)

	// Execute loads the family under a write lock, runs validate against the
	// current state and, if it passes, applies mutate and persists the result.
	// The aggregate invariants are re-checked before the write.
	Execute(ctx context.Context, familyID id.FamilyID, validate func(*familymodels.Family) error, mutate func(*familymodels.Family)) (*familymodels.Family, error)
}

// InvitationStore persists invitations. Token and pending (family, email)
// uniqueness are enforced by the store itself.
type InvitationStore interface {
	Create(ctx context.Context, invitation *invitationmodels.Invitation) error
	FindByID(ctx context.Context, invitationID id.InvitationID) (*invitationmodels.Invitation, error)
	FindByToken(ctx context.Context, token string) (*invitationmodels.Invitation, error)
	FindPending(ctx context.Context, familyID id.FamilyID, email string) (*invitationmodels.Invitation, error)
	ListByFamily(ctx context.Context, familyID id.FamilyID) ([]*invitationmodels.Invitation, error)

	// UpdateStatus writes the invitation's status fields only if the stored
	// status still equals from. A lost race returns sentinel.ErrInvalidState.
	UpdateStatus(ctx context.Context, invitation *invitationmodels.Invitation, from invitationmodels.Status) error
}

// Stores is the set of stores a transaction callback may touch.
type Stores struct {
	Families    FamilyStore
	Invitations InvitationStore
}

// TxRunner runs fn atomically. Writes made through the provided stores with
// the provided context commit together or not at all.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
