package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"familyhub/internal/auth/models"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/platform/httputil"
	authmw "familyhub/pkg/platform/middleware/auth"
	"familyhub/pkg/requestcontext"
)

// Service defines the account operations the handler exposes.
type Service interface {
	Register(ctx context.Context, account models.NewAccount) (*models.User, *models.Credential, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.Credential, error)
	GetUser(ctx context.Context, userID id.UserID) (*models.User, error)
}

// Handler serves /auth routes.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator authmw.JWTValidator
}

func New(service Service, jwtValidator authmw.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{service: service, jwtValidator: jwtValidator, logger: logger}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/auth/me", h.HandleMe)
	})
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	account models.NewAccount
}

func (r *registerRequest) Validate() error {
	r.account = models.NewAccount{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
	}
	return r.account.Validate()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

type authResponse struct {
	User       models.PublicUser  `json:"user"`
	Credential *models.Credential `json:"credential"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, cred, err := h.service.Register(ctx, req.account)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to register user", err)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"user_id", user.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, authResponse{User: user.Public(), Credential: cred})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, cred, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, authResponse{User: user.Public(), Credential: cred})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteServiceError(ctx, w, h.logger, "userID missing from context despite auth middleware",
			dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		httputil.WriteServiceError(ctx, w, h.logger, "failed to load current user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.Public())
}
