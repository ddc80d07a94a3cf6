package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"familyhub/internal/auth/models"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/email"
	"familyhub/pkg/platform/audit"
	"familyhub/pkg/platform/sentinel"
	"familyhub/pkg/requestcontext"
)

const defaultTokenTTL = time.Hour

var tracer = otel.Tracer("familyhub/internal/auth/service")

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, userID id.UserID) error
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, expiresIn time.Duration) (string, time.Time, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the credential store: it owns user accounts and issues access
// tokens for them.
type Service struct {
	users          UserStore
	tokens         TokenIssuer
	hasher         PasswordHasher
	tokenTTL       time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(users UserStore, tokens TokenIssuer, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	s := &Service{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		tokenTTL: defaultTokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an unverified account and logs it in.
func (s *Service) Register(ctx context.Context, account models.NewAccount) (*models.User, *models.Credential, error) {
	account.Verified = false
	user, err := s.CreateUser(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	cred, err := s.IssueCredential(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, cred, nil
}

// CreateUser validates the account, hashes the password and persists the user.
func (s *Service) CreateUser(ctx context.Context, account models.NewAccount) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "auth.CreateUser")
	defer span.End()

	if err := account.Validate(); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(account.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) || dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user, err := models.NewUser(id.NewUserID(), account.Email, account.FirstName, account.LastName, hash,
		account.Verified, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build user")
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, models.ErrEmailTaken
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	span.SetAttributes(attribute.String("user_id", user.ID.String()))

	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventUserCreated,
		"user_id", user.ID,
		"verified", user.Verified,
	)
	return user, nil
}

// Login verifies email and password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*models.User, *models.Credential, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	user, err := s.users.FindByEmail(ctx, email.Normalize(emailAddr))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventUserLoginFailed, "reason", "unknown_email")
			return nil, nil, models.ErrInvalidCredentials
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}

	if err := s.hasher.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventUserLoginFailed,
				"user_id", user.ID,
				"reason", "bad_password",
			)
			return nil, nil, models.ErrInvalidCredentials
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	cred, err := s.IssueCredential(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventUserLoggedIn, "user_id", user.ID)
	return user, cred, nil
}

// IssueCredential mints an access token for user.
func (s *Service) IssueCredential(ctx context.Context, user *models.User) (*models.Credential, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	return &models.Credential{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}
	return user, nil
}

// DeleteUser removes the account. Onboarding uses it to compensate a failed
// registration.
func (s *Service) DeleteUser(ctx context.Context, userID id.UserID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrUserNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}
	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventUserDeleted, "user_id", userID)
	return nil
}
