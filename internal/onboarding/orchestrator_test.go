package onboarding

//go:generate mockgen -source=orchestrator.go -destination=mocks/mocks.go -package=mocks Accounts,Invitations,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authmodels "familyhub/internal/auth/models"
	familymodels "familyhub/internal/family/models"
	invitationmodels "familyhub/internal/invitation/models"
	"familyhub/internal/onboarding/mocks"
	id "familyhub/pkg/domain"
	"familyhub/pkg/platform/audit"
)

const testToken = "tok"

type OrchestratorSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockAccounts    *mocks.MockAccounts
	mockInvitations *mocks.MockInvitations
	mockAudit       *mocks.MockAuditPublisher
	orchestrator    *Orchestrator
	ctx             context.Context
	family          *familymodels.Family
	user            *authmodels.User
	cred            *authmodels.Credential
	request         RegisterAndAcceptRequest
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAccounts = mocks.NewMockAccounts(s.ctrl)
	s.mockInvitations = mocks.NewMockInvitations(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.ctx = context.Background()

	var err error
	s.orchestrator, err = New(s.mockAccounts, s.mockInvitations,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.mockAudit),
	)
	s.Require().NoError(err)

	now := time.Now()
	s.family, err = familymodels.NewFamily(id.NewFamilyID(), "Smiths", id.NewUserID(), now)
	s.Require().NoError(err)
	s.user = &authmodels.User{ID: id.NewUserID(), Email: "b@x.com", Verified: true}
	s.cred = &authmodels.Credential{AccessToken: "jwt", TokenType: "Bearer"}
	s.request = RegisterAndAcceptRequest{
		Token:     testToken,
		FirstName: "Bea",
		LastName:  "Smith",
		Email:     "B@x.com",
		Password:  "correct horse battery",
	}
}

func (s *OrchestratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorSuite) expectDetails(existing bool) {
	s.mockInvitations.EXPECT().GetPublicDetails(gomock.Any(), testToken).Return(&invitationmodels.PublicDetails{
		Email:          "b@x.com",
		Role:           familymodels.RoleMember,
		FamilyName:     "Smiths",
		IsExistingUser: existing,
	}, nil)
}

func (s *OrchestratorSuite) expectFresh() {
	s.mockInvitations.EXPECT().FindPendingByToken(gomock.Any(), testToken).Return(&invitationmodels.Invitation{}, nil)
}

func (s *OrchestratorSuite) TestNew() {
	_, err := New(nil, s.mockInvitations)
	s.ErrorContains(err, "accounts service is required")
	_, err = New(s.mockAccounts, nil)
	s.ErrorContains(err, "invitation service is required")
}

func (s *OrchestratorSuite) TestRegisterAndAccept() {
	s.expectDetails(false)
	s.expectFresh()
	s.mockAccounts.EXPECT().CreateUser(gomock.Any(), authmodels.NewAccount{
		Email:     "b@x.com",
		FirstName: "Bea",
		LastName:  "Smith",
		Password:  "correct horse battery",
		Verified:  true,
	}).Return(s.user, nil)
	s.mockInvitations.EXPECT().AcceptForNewUser(gomock.Any(), testToken, s.user).Return(s.family, nil)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
		s.Equal(string(audit.EventRegisteredViaInvitation), ev.Action)
		s.Equal(s.family.ID.String(), ev.FamilyID)
		return nil
	})
	s.mockAccounts.EXPECT().IssueCredential(gomock.Any(), s.user).Return(s.cred, nil)

	result, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
	s.Require().NoError(err)
	s.Equal(s.user, result.User)
	s.Equal(s.cred, result.Credential)
	s.Equal(s.family, result.Family)
}

func (s *OrchestratorSuite) TestRejectsBeforeCreatingUser() {
	s.Run("email mismatch", func() {
		s.expectDetails(false)
		req := s.request
		req.Email = "someone@else.com"

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, req)
		s.ErrorIs(err, invitationmodels.ErrUserEmailMismatch)
	})

	s.Run("account already exists", func() {
		s.expectDetails(true)

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.ErrorIs(err, invitationmodels.ErrUserAlreadyExists)
	})

	s.Run("invitation moved on since the details read", func() {
		s.expectDetails(false)
		s.mockInvitations.EXPECT().FindPendingByToken(gomock.Any(), testToken).Return(nil, invitationmodels.ErrInvitationNotActionable)

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.ErrorIs(err, invitationmodels.ErrInvitationNotActionable)
	})

	s.Run("expired", func() {
		s.mockInvitations.EXPECT().GetPublicDetails(gomock.Any(), testToken).Return(nil, invitationmodels.ErrInvitationExpired)

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.ErrorIs(err, invitationmodels.ErrInvitationExpired)
	})

	s.Run("account created concurrently", func() {
		s.expectDetails(false)
		s.expectFresh()
		s.mockAccounts.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, authmodels.ErrEmailTaken)

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.ErrorIs(err, invitationmodels.ErrUserAlreadyExists)
	})
}

func (s *OrchestratorSuite) TestCompensation() {
	s.Run("user is deleted when the transaction fails", func() {
		s.expectDetails(false)
		s.expectFresh()
		s.mockAccounts.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(s.user, nil)
		s.mockInvitations.EXPECT().AcceptForNewUser(gomock.Any(), testToken, s.user).Return(nil, invitationmodels.ErrInvitationNotActionable)
		s.mockAccounts.EXPECT().DeleteUser(gomock.Any(), s.user.ID).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(string(audit.EventOnboardingRolledBack), ev.Action)
			s.Equal(s.user.ID.String(), ev.UserID)
			return nil
		})

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.ErrorIs(err, invitationmodels.ErrInvitationNotActionable)
	})

	s.Run("cleanup survives a cancelled request", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		s.expectDetails(false)
		s.expectFresh()
		s.mockAccounts.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(s.user, nil)
		s.mockInvitations.EXPECT().AcceptForNewUser(gomock.Any(), testToken, s.user).DoAndReturn(
			func(context.Context, string, *authmodels.User) (*familymodels.Family, error) {
				cancel()
				return nil, context.Canceled
			})
		s.mockAccounts.EXPECT().DeleteUser(gomock.Any(), s.user.ID).DoAndReturn(func(ctx context.Context, _ id.UserID) error {
			s.NoError(ctx.Err())
			deadline, ok := ctx.Deadline()
			s.True(ok, "cleanup must carry its own deadline")
			s.WithinDuration(time.Now().Add(defaultCleanupTimeout), deadline, time.Second)
			return nil
		})
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.orchestrator.RegisterAndAccept(ctx, s.request)
		s.ErrorIs(err, context.Canceled)
	})

	s.Run("hung cleanup is abandoned after the timeout", func() {
		orchestrator, err := New(s.mockAccounts, s.mockInvitations,
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			WithCleanupTimeout(20*time.Millisecond),
		)
		s.Require().NoError(err)
		s.expectDetails(false)
		s.expectFresh()
		s.mockAccounts.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(s.user, nil)
		s.mockInvitations.EXPECT().AcceptForNewUser(gomock.Any(), testToken, s.user).Return(nil, invitationmodels.ErrFamilyMissing)
		s.mockAccounts.EXPECT().DeleteUser(gomock.Any(), s.user.ID).DoAndReturn(func(ctx context.Context, _ id.UserID) error {
			<-ctx.Done()
			return ctx.Err()
		})

		done := make(chan error, 1)
		go func() {
			_, err := orchestrator.RegisterAndAccept(s.ctx, s.request)
			done <- err
		}()
		select {
		case err := <-done:
			s.ErrorIs(err, invitationmodels.ErrFamilyMissing)
		case <-time.After(5 * time.Second):
			s.Fail("compensation did not give up on a hung credential store")
		}
	})

	s.Run("failed cleanup keeps the original error", func() {
		s.expectDetails(false)
		s.expectFresh()
		s.mockAccounts.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(s.user, nil)
		s.mockInvitations.EXPECT().AcceptForNewUser(gomock.Any(), testToken, s.user).Return(nil, invitationmodels.ErrFamilyMissing)
		s.mockAccounts.EXPECT().DeleteUser(gomock.Any(), s.user.ID).Return(errors.New("store down"))

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.ErrorIs(err, invitationmodels.ErrFamilyMissing)
	})
}

func (s *OrchestratorSuite) TestReplay() {
	s.Run("same credentials return the existing membership", func() {
		s.mockInvitations.EXPECT().GetPublicDetails(gomock.Any(), testToken).Return(nil, invitationmodels.ErrInvitationNotFound)
		s.mockAccounts.EXPECT().Login(gomock.Any(), "B@x.com", "correct horse battery").Return(s.user, s.cred, nil)
		s.mockInvitations.EXPECT().RedeemForExistingUser(gomock.Any(), testToken, s.user.ID).Return(s.family, nil)

		result, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.Require().NoError(err)
		s.Equal(s.family, result.Family)
		s.Equal(s.cred, result.Credential)
	})

	s.Run("wrong password reports the token as unknown", func() {
		s.mockInvitations.EXPECT().GetPublicDetails(gomock.Any(), testToken).Return(nil, invitationmodels.ErrInvitationNotFound)
		s.mockAccounts.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil, authmodels.ErrInvalidCredentials)

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.ErrorIs(err, invitationmodels.ErrInvitationNotFound)
	})

	s.Run("invitation accepted by someone else", func() {
		s.mockInvitations.EXPECT().GetPublicDetails(gomock.Any(), testToken).Return(nil, invitationmodels.ErrInvitationNotFound)
		s.mockAccounts.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(s.user, s.cred, nil)
		s.mockInvitations.EXPECT().RedeemForExistingUser(gomock.Any(), testToken, s.user.ID).Return(nil, invitationmodels.ErrInvitationNotActionable)

		_, err := s.orchestrator.RegisterAndAccept(s.ctx, s.request)
		s.ErrorIs(err, invitationmodels.ErrInvitationNotFound)
	})
}
