// Package onboarding registers brand-new accounts through an invitation link.
//
// Account creation and the family/invitation transaction live in different
// stores, so a failure after the user is created is compensated by deleting
// that user rather than rolled back.
package onboarding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	authmodels "familyhub/internal/auth/models"
	familymodels "familyhub/internal/family/models"
	invitationmodels "familyhub/internal/invitation/models"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/email"
	"familyhub/pkg/platform/audit"
)

var tracer = otel.Tracer("familyhub/internal/onboarding")

// Accounts is the credential store.
type Accounts interface {
	CreateUser(ctx context.Context, account authmodels.NewAccount) (*authmodels.User, error)
	DeleteUser(ctx context.Context, userID id.UserID) error
	IssueCredential(ctx context.Context, user *authmodels.User) (*authmodels.Credential, error)
	Login(ctx context.Context, emailAddr, password string) (*authmodels.User, *authmodels.Credential, error)
}

// Invitations is the slice of the invitation service onboarding drives.
type Invitations interface {
	GetPublicDetails(ctx context.Context, token string) (*invitationmodels.PublicDetails, error)
	FindPendingByToken(ctx context.Context, token string) (*invitationmodels.Invitation, error)
	AcceptForNewUser(ctx context.Context, token string, user *authmodels.User) (*familymodels.Family, error)
	RedeemForExistingUser(ctx context.Context, token string, userID id.UserID) (*familymodels.Family, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type RegisterAndAcceptRequest struct {
	Token     string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type Result struct {
	User       *authmodels.User
	Credential *authmodels.Credential
	Family     *familymodels.Family
}

// defaultCleanupTimeout bounds the compensating delete once it is detached
// from the request.
const defaultCleanupTimeout = 10 * time.Second

type Orchestrator struct {
	accounts       Accounts
	invitations    Invitations
	logger         *slog.Logger
	auditPublisher AuditPublisher
	cleanupTimeout time.Duration
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(o *Orchestrator) {
		o.auditPublisher = publisher
	}
}

// WithCleanupTimeout overrides how long a compensating user delete may run.
func WithCleanupTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.cleanupTimeout = timeout
		}
	}
}

func New(accounts Accounts, invitations Invitations, opts ...Option) (*Orchestrator, error) {
	if accounts == nil {
		return nil, errors.New("accounts service is required")
	}
	if invitations == nil {
		return nil, errors.New("invitation service is required")
	}
	o := &Orchestrator{
		accounts:       accounts,
		invitations:    invitations,
		logger:         slog.Default(),
		cleanupTimeout: defaultCleanupTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// RegisterAndAccept creates a pre-verified account for the invited email,
// joins it to the family and logs it in. Replaying the call after success
// with the same credentials returns the existing membership.
func (o *Orchestrator) RegisterAndAccept(ctx context.Context, req RegisterAndAcceptRequest) (*Result, error) {
	ctx, span := tracer.Start(ctx, "onboarding.RegisterAndAccept")
	defer span.End()

	details, err := o.invitations.GetPublicDetails(ctx, req.Token)
	if err != nil {
		if errors.Is(err, invitationmodels.ErrInvitationNotFound) {
			if result, ok := o.replay(ctx, req); ok {
				return result, nil
			}
		}
		return nil, err
	}
	if !email.Equal(req.Email, details.Email) {
		return nil, invitationmodels.ErrUserEmailMismatch
	}
	if details.IsExistingUser {
		return nil, invitationmodels.ErrUserAlreadyExists
	}
	if _, err := o.invitations.FindPendingByToken(ctx, req.Token); err != nil {
		return nil, err
	}

	user, err := o.accounts.CreateUser(ctx, authmodels.NewAccount{
		Email:     details.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Verified:  true,
	})
	if err != nil {
		if errors.Is(err, authmodels.ErrEmailTaken) {
			return nil, invitationmodels.ErrUserAlreadyExists
		}
		return nil, err
	}

	family, err := o.invitations.AcceptForNewUser(ctx, req.Token, user)
	if err != nil {
		o.compensate(ctx, user, err)
		return nil, err
	}

	audit.LogAudit(ctx, o.logger, o.auditPublisher, audit.EventRegisteredViaInvitation,
		"user_id", user.ID,
		"family_id", family.ID,
	)

	// The membership is committed; a credential failure leaves a usable
	// account that can log in normally.
	cred, err := o.accounts.IssueCredential(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, Credential: cred, Family: family}, nil
}

// replay answers a repeated registration for an invitation this caller
// already accepted. It only succeeds when the supplied password is valid.
func (o *Orchestrator) replay(ctx context.Context, req RegisterAndAcceptRequest) (*Result, bool) {
	if req.Email == "" || req.Password == "" {
		return nil, false
	}
	user, cred, err := o.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, false
	}
	family, err := o.invitations.RedeemForExistingUser(ctx, req.Token, user.ID)
	if err != nil {
		return nil, false
	}
	return &Result{User: user, Credential: cred, Family: family}, true
}

// compensate deletes a user whose onboarding transaction failed. The request
// context may already be cancelled, so cleanup runs detached from it under
// its own deadline.
func (o *Orchestrator) compensate(ctx context.Context, user *authmodels.User, cause error) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cleanupTimeout)
	defer cancel()
	if err := o.accounts.DeleteUser(cleanupCtx, user.ID); err != nil {
		o.logger.ErrorContext(ctx, "failed to remove user after onboarding failure",
			"user_id", user.ID.String(),
			"cause", cause,
			"error", err,
			"alert", true,
			"code", string(dErrors.CodeIntegrity),
		)
		return
	}
	audit.LogAudit(ctx, o.logger, o.auditPublisher, audit.EventOnboardingRolledBack,
		"user_id", user.ID,
		"reason", string(dErrors.CodeOf(cause)),
	)
}
