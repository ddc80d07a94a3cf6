package onboarding_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authmodels "familyhub/internal/auth/models"
	"familyhub/internal/auth/password"
	authservice "familyhub/internal/auth/service"
	userstore "familyhub/internal/auth/store/user"
	familymodels "familyhub/internal/family/models"
	familyservice "familyhub/internal/family/service"
	invitationmodels "familyhub/internal/invitation/models"
	invitationservice "familyhub/internal/invitation/service"
	"familyhub/internal/invitation/token"
	jwttoken "familyhub/internal/jwt_token"
	"familyhub/internal/onboarding"
	"familyhub/internal/storage/memory"
	id "familyhub/pkg/domain"
	"familyhub/pkg/testutil"
)

type world struct {
	accounts     *authservice.Service
	families     *familyservice.Service
	invitations  *invitationservice.Service
	orchestrator *onboarding.Orchestrator
	db           *memory.DB
}

func newWorld(t *testing.T) *world {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := memory.New()
	users := userstore.New()

	accounts, err := authservice.New(users, jwttoken.NewJWTService("test-key", "familyhub", "familyhub-api"),
		password.NewHasher(bcrypt.MinCost), authservice.WithLogger(logger))
	require.NoError(t, err)
	families, err := familyservice.New(db.Families(), users, familyservice.WithLogger(logger))
	require.NoError(t, err)
	invitations, err := invitationservice.New(db.Stores(), db, users, token.NewGenerator(),
		invitationservice.WithLogger(logger))
	require.NoError(t, err)
	orchestrator, err := onboarding.New(accounts, invitations, onboarding.WithLogger(logger))
	require.NoError(t, err)

	return &world{accounts: accounts, families: families, invitations: invitations, orchestrator: orchestrator, db: db}
}

func TestInvitationOnboardingScenario(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	testutil.Given(t, "user A created the Smiths family and invited b@x.com", func(t *testing.T) {
		creator, _, err := w.accounts.Register(ctx, authRegistration("a@x.com"))
		require.NoError(t, err)
		family, err := w.families.CreateFamily(ctx, "Smiths", creator.ID)
		require.NoError(t, err)
		require.Len(t, family.Members, 1)
		assert.Equal(t, familymodels.RolePrimaryUser, family.Members[0].Role)

		inv, err := w.invitations.CreateInvitation(ctx, invitationservice.CreateInvitationRequest{
			FamilyID:    family.ID,
			Email:       "b@x.com",
			Role:        "member",
			RequestedBy: creator.ID,
		})
		require.NoError(t, err)

		request := onboarding.RegisterAndAcceptRequest{
			Token:     inv.Token,
			FirstName: "Bea",
			Email:     "B@X.com",
			Password:  "correct horse battery",
		}

		testutil.When(t, "B registers through the invitation", func(t *testing.T) {
			result, err := w.orchestrator.RegisterAndAccept(ctx, request)
			require.NoError(t, err)

			testutil.Then(t, "B is a verified member and the invitation is accepted", func(t *testing.T) {
				assert.True(t, result.User.Verified)
				assert.Equal(t, "b@x.com", result.User.Email)
				assert.NotEmpty(t, result.Credential.AccessToken)
				member, ok := result.Family.Member(result.User.ID)
				require.True(t, ok)
				assert.Equal(t, familymodels.RoleMember, member.Role)

				stored, err := w.db.Invitations().FindByID(ctx, inv.ID)
				require.NoError(t, err)
				assert.True(t, stored.WasAcceptedBy(result.User.ID))
			})

			testutil.Then(t, "a second call with the same token returns the existing membership", func(t *testing.T) {
				again, err := w.orchestrator.RegisterAndAccept(ctx, request)
				require.NoError(t, err)
				assert.Equal(t, result.User.ID, again.User.ID)
				assert.Len(t, again.Family.Members, 2)
			})
		})

		testutil.When(t, "someone else replays the token", func(t *testing.T) {
			_, err := w.orchestrator.RegisterAndAccept(ctx, onboarding.RegisterAndAcceptRequest{
				Token:    inv.Token,
				Email:    "mallory@x.com",
				Password: "correct horse battery",
			})

			testutil.Then(t, "the token looks unknown", func(t *testing.T) {
				assert.ErrorIs(t, err, invitationmodels.ErrInvitationNotFound)
			})
		})
	})

	testutil.Given(t, "an invitation for an address that already has an account", func(t *testing.T) {
		creator, _, err := w.accounts.Register(ctx, authRegistration("c@x.com"))
		require.NoError(t, err)
		existing, _, err := w.accounts.Register(ctx, authRegistration("d@x.com"))
		require.NoError(t, err)
		family, err := w.families.CreateFamily(ctx, "Joneses", creator.ID)
		require.NoError(t, err)
		inv, err := w.invitations.CreateInvitation(ctx, invitationservice.CreateInvitationRequest{
			FamilyID: family.ID, Email: "d@x.com", RequestedBy: creator.ID,
		})
		require.NoError(t, err)

		testutil.When(t, "the register path is used", func(t *testing.T) {
			_, err := w.orchestrator.RegisterAndAccept(ctx, onboarding.RegisterAndAcceptRequest{
				Token: inv.Token, Email: "d@x.com", Password: "another password",
			})

			testutil.Then(t, "it is refused and no second account exists", func(t *testing.T) {
				assert.ErrorIs(t, err, invitationmodels.ErrUserAlreadyExists)
				user, err := w.accounts.GetUser(ctx, existing.ID)
				require.NoError(t, err)
				assert.Equal(t, "d@x.com", user.Email)
			})
		})

		testutil.When(t, "the existing user redeems while logged in", func(t *testing.T) {
			joined, err := w.invitations.RedeemForExistingUser(ctx, inv.Token, existing.ID)

			testutil.Then(t, "they join the family", func(t *testing.T) {
				require.NoError(t, err)
				assert.True(t, joined.IsMember(existing.ID))
				assert.False(t, joined.IsMember(id.NewUserID()))
			})
		})
	})
}

func authRegistration(emailAddr string) authmodels.NewAccount {
	return authmodels.NewAccount{Email: emailAddr, Password: "correct horse battery"}
}
