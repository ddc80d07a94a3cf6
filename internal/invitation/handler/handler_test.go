package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,Onboarder

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authmodels "familyhub/internal/auth/models"
	familymodels "familyhub/internal/family/models"
	"familyhub/internal/family/policy"
	"familyhub/internal/invitation/handler/mocks"
	"familyhub/internal/invitation/models"
	invitationservice "familyhub/internal/invitation/service"
	jwttoken "familyhub/internal/jwt_token"
	"familyhub/internal/onboarding"
	id "familyhub/pkg/domain"
	"familyhub/pkg/testutil"
)

const testToken = "k3yK3yk3yK3yk3yK3yk3yK3yk3yK3yk3yK3yk3yK3yk"

type InvitationHandlerSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockService   *mocks.MockService
	mockOnboarder *mocks.MockOnboarder
	jwt           *jwttoken.JWTService
	router        chi.Router
	userID        id.UserID
	family        *familymodels.Family
	invitation    *models.Invitation
}

func TestInvitationHandlerSuite(t *testing.T) {
	suite.Run(t, new(InvitationHandlerSuite))
}

func (s *InvitationHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	s.mockOnboarder = mocks.NewMockOnboarder(s.ctrl)
	s.jwt = jwttoken.NewJWTService("test-key", "familyhub", "familyhub-api")
	s.userID = id.NewUserID()

	now := time.Now()
	var err error
	s.family, err = familymodels.NewFamily(id.NewFamilyID(), "Smiths", s.userID, now)
	s.Require().NoError(err)
	s.invitation, err = models.NewInvitation(id.NewInvitationID(), s.family.ID, "b@x.com", familymodels.RoleMember,
		s.userID, testToken, now, now.Add(time.Hour))
	s.Require().NoError(err)

	h := New(s.mockService, s.mockOnboarder, jwttoken.NewValidator(s.jwt), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *InvitationHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *InvitationHandlerSuite) authed(req *http.Request) *http.Request {
	token, _, err := s.jwt.GenerateAccessToken(s.userID, time.Hour)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *InvitationHandlerSuite) TestCreate() {
	path := "/families/" + s.family.ID.String() + "/invitations"

	s.Run("requires auth", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]string{"email": "b@x.com"}))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("created without leaking the token", func() {
		s.mockService.EXPECT().CreateInvitation(gomock.Any(), invitationservice.CreateInvitationRequest{
			FamilyID:    s.family.ID,
			Email:       "b@x.com",
			Role:        "member",
			RequestedBy: s.userID,
		}).Return(s.invitation, nil)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, path,
			map[string]string{"email": "b@x.com", "role": "member"})))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		s.NotContains(rr.Body.String(), testToken)
		resp := testutil.UnmarshalResponse[models.Invitation](s.T(), rr)
		s.Equal(s.invitation.ID, resp.ID)
		s.Equal(models.StatusPending, resp.Status)
	})

	s.Run("missing email", func() {
		rr := testutil.DoRequest(s.router, s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]string{})))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("error mapping", func() {
		cases := []struct {
			err    error
			status int
		}{
			{policy.ErrNotCreator, http.StatusForbidden},
			{familymodels.ErrAlreadyMember, http.StatusConflict},
			{models.ErrInvitationAlreadyPending, http.StatusConflict},
			{familymodels.ErrInvalidRole, http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.mockService.EXPECT().CreateInvitation(gomock.Any(), gomock.Any()).Return(nil, tc.err)
			rr := testutil.DoRequest(s.router, s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, path,
				map[string]string{"email": "b@x.com"})))
			s.Equal(tc.status, rr.Code, tc.err.Error())
		}
	})
}

func (s *InvitationHandlerSuite) TestListAndRevoke() {
	s.Run("empty list renders an array", func() {
		s.mockService.EXPECT().ListFamilyInvitations(gomock.Any(), s.family.ID, s.userID).Return(nil, nil)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodGet,
			"/families/"+s.family.ID.String()+"/invitations")))
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`{"invitations":[]}`, rr.Body.String())
	})

	s.Run("revoke", func() {
		s.mockService.EXPECT().RevokeInvitation(gomock.Any(), s.invitation.ID, s.userID).Return(s.invitation, nil)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost,
			"/invitations/"+s.invitation.ID.String()+"/revoke")))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("revoke settled invitation", func() {
		s.mockService.EXPECT().RevokeInvitation(gomock.Any(), s.invitation.ID, s.userID).Return(nil, models.ErrInvitationNotActionable)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost,
			"/invitations/"+s.invitation.ID.String()+"/revoke")))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_state")
	})

	s.Run("malformed invitation id", func() {
		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost, "/invitations/nope/revoke")))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *InvitationHandlerSuite) TestPublicDetails() {
	s.Run("no auth required", func() {
		s.mockService.EXPECT().GetPublicDetails(gomock.Any(), testToken).Return(&models.PublicDetails{
			Email:      "b@x.com",
			Role:       familymodels.RoleMember,
			FamilyName: "Smiths",
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/invitations/"+testToken))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[models.PublicDetails](s.T(), rr)
		s.Equal("Smiths", resp.FamilyName)
		s.False(resp.IsExistingUser)
	})

	s.Run("unknown token", func() {
		s.mockService.EXPECT().GetPublicDetails(gomock.Any(), "missing").Return(nil, models.ErrInvitationNotFound)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/invitations/missing"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("expired token", func() {
		s.mockService.EXPECT().GetPublicDetails(gomock.Any(), testToken).Return(nil, models.ErrInvitationExpired)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/invitations/"+testToken))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *InvitationHandlerSuite) TestAccept() {
	path := "/invitations/" + testToken + "/accept"

	s.Run("requires auth", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, path))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("joins as the token's user", func() {
		s.mockService.EXPECT().RedeemForExistingUser(gomock.Any(), testToken, s.userID).Return(s.family, nil)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost, path)))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[familymodels.Family](s.T(), rr)
		s.Equal(s.family.ID, resp.ID)
	})

	s.Run("email mismatch", func() {
		s.mockService.EXPECT().RedeemForExistingUser(gomock.Any(), testToken, s.userID).Return(nil, models.ErrUserEmailMismatch)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost, path)))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("family missing is not exposed", func() {
		s.mockService.EXPECT().RedeemForExistingUser(gomock.Any(), testToken, s.userID).Return(nil, models.ErrFamilyMissing)

		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost, path)))
		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		s.NotContains(rr.Body.String(), "family that does not exist")
	})
}

func (s *InvitationHandlerSuite) TestRegisterAndAccept() {
	path := "/invitations/" + testToken + "/register"
	body := map[string]string{
		"first_name": "Bea",
		"email":      "b@x.com",
		"password":   "correct horse battery",
	}

	s.Run("creates the account and returns a credential", func() {
		user := &authmodels.User{ID: id.NewUserID(), Email: "b@x.com", FirstName: "Bea", PasswordHash: "secret-hash", Verified: true}
		s.mockOnboarder.EXPECT().RegisterAndAccept(gomock.Any(), onboarding.RegisterAndAcceptRequest{
			Token:     testToken,
			FirstName: "Bea",
			Email:     "b@x.com",
			Password:  "correct horse battery",
		}).Return(&onboarding.Result{
			User:       user,
			Credential: &authmodels.Credential{AccessToken: "jwt", TokenType: "Bearer", ExpiresIn: 3600},
			Family:     s.family,
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, body))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		s.NotContains(rr.Body.String(), "secret-hash")
		resp := testutil.UnmarshalResponse[registerAndAcceptResponse](s.T(), rr)
		s.Equal(user.ID, resp.User.ID)
		s.Equal("jwt", resp.Credential.AccessToken)
		s.Equal(s.family.ID, resp.Family.ID)
	})

	s.Run("existing account", func() {
		s.mockOnboarder.EXPECT().RegisterAndAccept(gomock.Any(), gomock.Any()).Return(nil, models.ErrUserAlreadyExists)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("missing password", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path,
			map[string]string{"email": "b@x.com"}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

