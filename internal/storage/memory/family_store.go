package memory

import (
	"context"
	"slices"

	"familyhub/internal/family/models"
	id "familyhub/pkg/domain"
	"familyhub/pkg/platform/sentinel"
)

// FamilyStore is the in-memory storage.FamilyStore. Returned families are
// copies; callers never alias stored state.
type FamilyStore struct {
	db *DB
}

func (s *FamilyStore) Create(ctx context.Context, family *models.Family) error {
	if err := family.CheckInvariants(); err != nil {
		return err
	}
	return s.db.view(ctx, func(t *tables) error {
		if _, exists := t.families[family.ID]; exists {
			return sentinel.ErrAlreadyUsed
		}
		stored := family.Clone()
		stored.Version = 1
		family.Version = 1
		t.families[family.ID] = stored
		return nil
	})
}

func (s *FamilyStore) FindByID(ctx context.Context, familyID id.FamilyID) (*models.Family, error) {
	var found *models.Family
	err := s.db.view(ctx, func(t *tables) error {
		f, ok := t.families[familyID]
		if !ok {
			return sentinel.ErrNotFound
		}
		found = f.Clone()
		return nil
	})
	return found, err
}

func (s *FamilyStore) ListByMember(ctx context.Context, userID id.UserID) ([]*models.Family, error) {
	var out []*models.Family
	err := s.db.view(ctx, func(t *tables) error {
		for _, f := range t.families {
			if f.IsMember(userID) {
				out = append(out, f.Clone())
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *models.Family) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, err
}

// Execute validates and mutates a private copy of the family, then replaces
// the stored record. A failed validation or invariant check leaves it untouched.
func (s *FamilyStore) Execute(ctx context.Context, familyID id.FamilyID, validate func(*models.Family) error, mutate func(*models.Family)) (*models.Family, error) {
	var result *models.Family
	err := s.db.view(ctx, func(t *tables) error {
		current, ok := t.families[familyID]
		if !ok {
			return sentinel.ErrNotFound
		}
		work := current.Clone()
		if validate != nil {
			if err := validate(work); err != nil {
				return err
			}
		}
		mutate(work)
		if err := work.CheckInvariants(); err != nil {
			return err
		}
		work.Version = current.Version + 1
		t.families[familyID] = work
		result = work.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
