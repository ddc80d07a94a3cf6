package user

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"familyhub/internal/auth/models"
	id "familyhub/pkg/domain"
	"familyhub/pkg/platform/sentinel"
)

// User store invariants (lookup, unique email, delete, ErrNotFound) back the
// onboarding compensation path, so they are pinned here.
type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func newUser(email string) *models.User {
	return &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		FirstName:    "Jane",
		LastName:     "Doe",
		PasswordHash: "hash",
	}
}

func (s *InMemoryUserStoreSuite) TestLookupBehavior() {
	ctx := context.Background()

	s.Run("returns user by ID when exists", func() {
		user := newUser("jane.doe@example.com")
		s.Require().NoError(s.store.Create(ctx, user))

		found, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("returns user by email when exists", func() {
		user := newUser("email.lookup@example.com")
		s.Require().NoError(s.store.Create(ctx, user))

		found, err := s.store.FindByEmail(ctx, user.Email)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("returns ErrNotFound when user ID does not exist", func() {
		_, err := s.store.FindByID(ctx, id.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when email does not exist", func() {
		_, err := s.store.FindByEmail(ctx, "missing@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned users are copies", func() {
		user := newUser("copy@example.com")
		s.Require().NoError(s.store.Create(ctx, user))

		found, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		found.Verified = true

		again, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		s.False(again.Verified)
	})
}

func (s *InMemoryUserStoreSuite) TestUniqueEmail() {
	ctx := context.Background()

	s.Run("second account with the same email is rejected", func() {
		s.Require().NoError(s.store.Create(ctx, newUser("dup@example.com")))
		err := s.store.Create(ctx, newUser("dup@example.com"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("only one concurrent create wins", func() {
		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if s.store.Create(ctx, newUser("race@example.com")) == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
	})
}

func (s *InMemoryUserStoreSuite) TestDeletion() {
	ctx := context.Background()

	s.Run("deletes user and frees the email", func() {
		user := newUser("delete.me@example.com")
		s.Require().NoError(s.store.Create(ctx, user))
		s.Require().NoError(s.store.Delete(ctx, user.ID))

		_, err := s.store.FindByID(ctx, user.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByEmail(ctx, user.Email)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		s.Require().NoError(s.store.Create(ctx, newUser("delete.me@example.com")))
	})

	s.Run("returns ErrNotFound when deleting non-existent user", func() {
		err := s.store.Delete(ctx, id.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
