package memory

import (
	"context"
	"slices"

	"familyhub/internal/invitation/models"
	"familyhub/internal/storage"
	id "familyhub/pkg/domain"
	"familyhub/pkg/platform/sentinel"
)

// InvitationStore is the in-memory storage.InvitationStore. The byToken and
// pending indexes play the role of the unique constraints in postgres.
type InvitationStore struct {
	db *DB
}

func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	return s.db.view(ctx, func(t *tables) error {
		if _, exists := t.invitations[inv.ID]; exists {
			return sentinel.ErrAlreadyUsed
		}
		if _, taken := t.byToken[inv.Token]; taken {
			return storage.ErrTokenTaken
		}
		key := pendingKey{familyID: inv.FamilyID, email: inv.Email}
		if inv.IsPending() {
			if _, exists := t.pending[key]; exists {
				return storage.ErrPendingInvitationExists
			}
			t.pending[key] = inv.ID
		}
		t.invitations[inv.ID] = inv.Clone()
		t.byToken[inv.Token] = inv.ID
		return nil
	})
}

func (s *InvitationStore) FindByID(ctx context.Context, invitationID id.InvitationID) (*models.Invitation, error) {
	var found *models.Invitation
	err := s.db.view(ctx, func(t *tables) error {
		inv, ok := t.invitations[invitationID]
		if !ok {
			return sentinel.ErrNotFound
		}
		found = inv.Clone()
		return nil
	})
	return found, err
}

func (s *InvitationStore) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var found *models.Invitation
	err := s.db.view(ctx, func(t *tables) error {
		invID, ok := t.byToken[token]
		if !ok {
			return sentinel.ErrNotFound
		}
		found = t.invitations[invID].Clone()
		return nil
	})
	return found, err
}

func (s *InvitationStore) FindPending(ctx context.Context, familyID id.FamilyID, email string) (*models.Invitation, error) {
	var found *models.Invitation
	err := s.db.view(ctx, func(t *tables) error {
		invID, ok := t.pending[pendingKey{familyID: familyID, email: email}]
		if !ok {
			return sentinel.ErrNotFound
		}
		found = t.invitations[invID].Clone()
		return nil
	})
	return found, err
}

// ListByFamily returns the family's invitations, newest first.
func (s *InvitationStore) ListByFamily(ctx context.Context, familyID id.FamilyID) ([]*models.Invitation, error) {
	var out []*models.Invitation
	err := s.db.view(ctx, func(t *tables) error {
		for _, inv := range t.invitations {
			if inv.FamilyID == familyID {
				out = append(out, inv.Clone())
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *models.Invitation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, err
}

func (s *InvitationStore) UpdateStatus(ctx context.Context, inv *models.Invitation, from models.Status) error {
	return s.db.view(ctx, func(t *tables) error {
		current, ok := t.invitations[inv.ID]
		if !ok {
			return sentinel.ErrNotFound
		}
		if current.Status != from {
			return sentinel.ErrInvalidState
		}
		updated := current.Clone()
		updated.Status = inv.Status
		updated.UpdatedAt = inv.UpdatedAt
		updated.AcceptedBy = inv.AcceptedBy
		updated.AcceptedAt = inv.AcceptedAt
		t.invitations[inv.ID] = updated

		key := pendingKey{familyID: current.FamilyID, email: current.Email}
		if current.IsPending() && !updated.IsPending() && t.pending[key] == inv.ID {
			delete(t.pending, key)
		}
		return nil
	})
}
