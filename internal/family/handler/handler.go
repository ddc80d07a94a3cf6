package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"familyhub/internal/family/models"
	familyservice "familyhub/internal/family/service"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/platform/httputil"
	authmw "familyhub/pkg/platform/middleware/auth"
	"familyhub/pkg/requestcontext"
)

// Service defines the family operations the handler exposes.
type Service interface {
	CreateFamily(ctx context.Context, name string, creatorID id.UserID) (*models.Family, error)
	GetFamily(ctx context.Context, familyID id.FamilyID, requestedBy id.UserID) (*models.Family, error)
	ListMine(ctx context.Context, userID id.UserID) ([]*models.Family, error)
	UpdateFamily(ctx context.Context, req familyservice.UpdateFamilyRequest) (*models.Family, error)
	AddMemberDirect(ctx context.Context, req familyservice.AddMemberRequest) (*models.Family, error)
	RemoveMember(ctx context.Context, familyID id.FamilyID, memberID, requestedBy id.UserID) (*models.Family, error)
	ChangeMemberRole(ctx context.Context, familyID id.FamilyID, memberID id.UserID, newRole string, requestedBy id.UserID) (*models.Family, error)
}

// Handler serves /families routes. Every route requires authentication.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator authmw.JWTValidator
}

func New(service Service, jwtValidator authmw.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, jwtValidator: jwtValidator, logger: logger}
}

// Register registers the family routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/families", h.HandleCreate)
		r.Get("/families", h.HandleListMine)
		r.Get("/families/{familyID}", h.HandleGet)
		r.Patch("/families/{familyID}", h.HandleUpdate)
		r.Post("/families/{familyID}/members", h.HandleAddMember)
		r.Delete("/families/{familyID}/members/{userID}", h.HandleRemoveMember)
		r.Put("/families/{familyID}/members/{userID}/role", h.HandleChangeRole)
	})
}

type createFamilyRequest struct {
	Name string `json:"name"`
}

func (r *createFamilyRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

type updateFamilyRequest struct {
	Name         *string `json:"name"`
	Timezone     *string `json:"timezone"`
	WeekStartsOn *string `json:"week_starts_on"`
}

func (r *updateFamilyRequest) Validate() error {
	if r.Name == nil && r.Timezone == nil && r.WeekStartsOn == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return nil
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r *addMemberRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return nil
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (r *changeRoleRequest) Validate() error {
	if r.Role == "" {
		return dErrors.New(dErrors.CodeValidation, "role is required")
	}
	return nil
}

type familyListResponse struct {
	Families []*models.Family `json:"families"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[createFamilyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	family, err := h.service.CreateFamily(ctx, req.Name, userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to create family", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, family)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	families, err := h.service.ListMine(ctx, userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to list families", err)
		return
	}
	if families == nil {
		families = []*models.Family{}
	}
	httputil.WriteJSON(w, http.StatusOK, familyListResponse{Families: families})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	family, err := h.service.GetFamily(ctx, familyID, userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to get family", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[updateFamilyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	family, err := h.service.UpdateFamily(ctx, familyservice.UpdateFamilyRequest{
		FamilyID:     familyID,
		RequestedBy:  userID,
		Name:         req.Name,
		Timezone:     req.Timezone,
		WeekStartsOn: req.WeekStartsOn,
	})
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to update family", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[addMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	family, err := h.service.AddMemberDirect(ctx, familyservice.AddMemberRequest{
		FamilyID:    familyID,
		Email:       req.Email,
		Role:        req.Role,
		RequestedBy: userID,
	})
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to add member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	family, err := h.service.RemoveMember(ctx, familyID, memberID, userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to remove member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}
	memberID, ok := h.memberID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[changeRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	family, err := h.service.ChangeMemberRole(ctx, familyID, memberID, req.Role, userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to change member role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
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

func (h *Handler) familyID(w http.ResponseWriter, r *http.Request) (id.FamilyID, bool) {
	familyID, err := id.ParseFamilyID(chi.URLParam(r, "familyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.FamilyID{}, false
	}
	return familyID, true
}

func (h *Handler) memberID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	memberID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, false
	}
	return memberID, true
}
