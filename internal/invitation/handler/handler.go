package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmodels "familyhub/internal/auth/models"
	familymodels "familyhub/internal/family/models"
	"familyhub/internal/invitation/models"
	invitationservice "familyhub/internal/invitation/service"
	"familyhub/internal/onboarding"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/platform/httputil"
	authmw "familyhub/pkg/platform/middleware/auth"
	"familyhub/pkg/requestcontext"
)

// Service defines the invitation operations the handler exposes.
type Service interface {
	CreateInvitation(ctx context.Context, req invitationservice.CreateInvitationRequest) (*models.Invitation, error)
	ListFamilyInvitations(ctx context.Context, familyID id.FamilyID, requestedBy id.UserID) ([]*models.Invitation, error)
	RevokeInvitation(ctx context.Context, invitationID id.InvitationID, requestedBy id.UserID) (*models.Invitation, error)
	GetPublicDetails(ctx context.Context, token string) (*models.PublicDetails, error)
	RedeemForExistingUser(ctx context.Context, token string, userID id.UserID) (*familymodels.Family, error)
}

// Onboarder registers new accounts through an invitation.
type Onboarder interface {
	RegisterAndAccept(ctx context.Context, req onboarding.RegisterAndAcceptRequest) (*onboarding.Result, error)
}

// Handler serves invitation routes. Token lookups and registration are
// public; everything else requires authentication.
type Handler struct {
	service      Service
	onboarder    Onboarder
	logger       *slog.Logger
	jwtValidator authmw.JWTValidator
}

func New(service Service, onboarder Onboarder, jwtValidator authmw.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, onboarder: onboarder, jwtValidator: jwtValidator, logger: logger}
}

// Register registers the invitation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/invitations/{token}", h.HandleGetPublicDetails)
	r.Post("/invitations/{token}/register", h.HandleRegisterAndAccept)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/families/{familyID}/invitations", h.HandleCreate)
		r.Get("/families/{familyID}/invitations", h.HandleList)
		r.Post("/invitations/{token}/accept", h.HandleAccept)
		r.Post("/invitations/{invitationID}/revoke", h.HandleRevoke)
	})
}

type createInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r *createInvitationRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return nil
}

type registerAndAcceptRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r *registerAndAcceptRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

type invitationListResponse struct {
	Invitations []*models.Invitation `json:"invitations"`
}

type registerAndAcceptResponse struct {
	User       authmodels.PublicUser  `json:"user"`
	Credential *authmodels.Credential `json:"credential"`
	Family     *familymodels.Family   `json:"family"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	familyID, err := id.ParseFamilyID(chi.URLParam(r, "familyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[createInvitationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	inv, err := h.service.CreateInvitation(ctx, invitationservice.CreateInvitationRequest{
		FamilyID:    familyID,
		Email:       req.Email,
		Role:        req.Role,
		RequestedBy: userID,
	})
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to create invitation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, inv)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	familyID, err := id.ParseFamilyID(chi.URLParam(r, "familyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	invitations, err := h.service.ListFamilyInvitations(ctx, familyID, userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to list invitations", err)
		return
	}
	if invitations == nil {
		invitations = []*models.Invitation{}
	}
	httputil.WriteJSON(w, http.StatusOK, invitationListResponse{Invitations: invitations})
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	invitationID, err := id.ParseInvitationID(chi.URLParam(r, "invitationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	inv, err := h.service.RevokeInvitation(ctx, invitationID, userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to revoke invitation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

// HandleGetPublicDetails is unauthenticated: the token is the credential.
func (h *Handler) HandleGetPublicDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	details, err := h.service.GetPublicDetails(ctx, chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to load invitation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	family, err := h.service.RedeemForExistingUser(ctx, chi.URLParam(r, "token"), userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to accept invitation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) HandleRegisterAndAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[registerAndAcceptRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.onboarder.RegisterAndAccept(ctx, onboarding.RegisterAndAcceptRequest{
		Token:     chi.URLParam(r, "token"),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to register through invitation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registerAndAcceptResponse{
		User:       result.User.Public(),
		Credential: result.Credential,
		Family:     result.Family,
	})
}

func (h *Handler) requireUserID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteServiceError(r.Context(), w, h.logger, "userID missing from context despite auth middleware",
			dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	return userID, true
}
