package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	authmodels "familyhub/internal/auth/models"
	familymodels "familyhub/internal/family/models"
	"familyhub/internal/family/policy"
	"familyhub/internal/invitation/metrics"
	"familyhub/internal/invitation/models"
	"familyhub/internal/invitation/token"
	"familyhub/internal/notify"
	"familyhub/internal/storage"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/email"
	"familyhub/pkg/platform/audit"
	"familyhub/pkg/platform/sentinel"
	"familyhub/pkg/requestcontext"
)

const maxTokenAttempts = 3

var tracer = otel.Tracer("familyhub/internal/invitation/service")

// errLostRace aborts a redeem transaction whose conditional accept found the
// invitation already moved on.
var errLostRace = errors.New("invitation changed during redeem")

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores storage.Stores) error) error
}

// UserLookup reads accounts from the credential store.
type UserLookup interface {
	FindByID(ctx context.Context, userID id.UserID) (*authmodels.User, error)
	FindByEmail(ctx context.Context, email string) (*authmodels.User, error)
}

type TokenGenerator interface {
	Generate() (string, error)
	ExpiresAt(now time.Time) time.Time
}

// Notifier schedules an invitation email without blocking the caller.
type Notifier interface {
	Dispatch(ctx context.Context, msg notify.InvitationEmail)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the invitation lifecycle manager.
type Service struct {
	stores         storage.Stores
	tx             TxRunner
	users          UserLookup
	tokens         TokenGenerator
	notifier       Notifier
	acceptBaseURL  string
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithAcceptBaseURL sets the link prefix emailed to invitees; the token is
// appended as the last path segment.
func WithAcceptBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.acceptBaseURL = strings.TrimRight(baseURL, "/")
	}
}

func New(stores storage.Stores, tx TxRunner, users UserLookup, tokens TokenGenerator, opts ...Option) (*Service, error) {
	if stores.Families == nil || stores.Invitations == nil {
		return nil, errors.New("family and invitation stores are required")
	}
	if tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if users == nil {
		return nil, errors.New("user lookup is required")
	}
	if tokens == nil {
		return nil, errors.New("token generator is required")
	}
	s := &Service{
		stores: stores,
		tx:     tx,
		users:  users,
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateInvitationRequest asks for email to be invited into a family.
type CreateInvitationRequest struct {
	FamilyID    id.FamilyID
	Email       string
	Role        string
	RequestedBy id.UserID
}

// CreateInvitation records a pending invitation and schedules its email.
func (s *Service) CreateInvitation(ctx context.Context, req CreateInvitationRequest) (*models.Invitation, error) {
	ctx, span := tracer.Start(ctx, "invitation.CreateInvitation")
	defer span.End()

	family, err := s.loadFamily(ctx, s.stores, req.FamilyID, familymodels.ErrFamilyNotFound)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, family, req.RequestedBy, policy.OpInvite); err != nil {
		return nil, err
	}

	emailAddr, err := email.NormalizeAndValidate(req.Email)
	if err != nil {
		return nil, err
	}
	role, err := familymodels.ParseAssignableRole(req.Role)
	if err != nil {
		return nil, err
	}

	existingUser, err := s.users.FindByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		if family.IsMember(existingUser.ID) {
			return nil, familymodels.ErrAlreadyMember
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup invitee")
	}

	now := requestcontext.Now(ctx)
	pending, err := s.stores.Invitations.FindPending(ctx, family.ID, emailAddr)
	switch {
	case err == nil:
		if !pending.IsExpired(now) {
			return nil, models.ErrInvitationAlreadyPending
		}
		if err := s.expire(ctx, s.stores, pending, now); err != nil {
			return nil, err
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check pending invitations")
	}

	inv, err := s.persistNew(ctx, family.ID, emailAddr, role, req.RequestedBy, now)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("invitation_id", inv.ID.String()))

	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventInvitationCreated,
		"user_id", req.RequestedBy,
		"family_id", family.ID,
		"subject", inv.ID,
		"role", role,
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.notify(ctx, family, inv)
	return inv, nil
}

// persistNew generates a token and stores the invitation, drawing a fresh
// token if the store reports a collision.
func (s *Service) persistNew(ctx context.Context, familyID id.FamilyID, emailAddr string, role familymodels.Role, invitedBy id.UserID, now time.Time) (*models.Invitation, error) {
	for attempt := 1; ; attempt++ {
		tok, err := s.tokens.Generate()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate invitation token")
		}
		inv, err := models.NewInvitation(id.NewInvitationID(), familyID, emailAddr, role, invitedBy, tok, now, s.tokens.ExpiresAt(now))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build invitation")
		}

		err = s.stores.Invitations.Create(ctx, inv)
		switch {
		case err == nil:
			return inv, nil
		case errors.Is(err, storage.ErrPendingInvitationExists):
			return nil, models.ErrInvitationAlreadyPending
		case errors.Is(err, storage.ErrTokenTaken) && attempt < maxTokenAttempts:
			s.logger.WarnContext(ctx, "invitation token collision, regenerating", "attempt", attempt)
			continue
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, familymodels.ErrFamilyNotFound
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create invitation")
		}
	}
}

func (s *Service) notify(ctx context.Context, family *familymodels.Family, inv *models.Invitation) {
	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(ctx, notify.InvitationEmail{
		InvitationID: inv.ID,
		To:           inv.Email,
		FamilyName:   family.Name,
		Role:         inv.Role.String(),
		AcceptURL:    s.acceptBaseURL + "/" + inv.Token,
		ExpiresAt:    inv.ExpiresAt,
	})
}

// GetPublicDetails describes a pending invitation to an unauthenticated token
// holder. Terminal and unknown tokens are indistinguishable.
func (s *Service) GetPublicDetails(ctx context.Context, tok string) (*models.PublicDetails, error) {
	ctx, span := tracer.Start(ctx, "invitation.GetPublicDetails")
	defer span.End()

	inv, err := s.findPending(ctx, tok)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	if inv.IsExpired(now) {
		if err := s.expire(ctx, s.stores, inv, now); err != nil {
			return nil, err
		}
		return nil, models.ErrInvitationExpired
	}

	var family *familymodels.Family
	var existing bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := s.loadFamily(gctx, s.stores, inv.FamilyID, models.ErrFamilyMissing)
		family = f
		return err
	})
	g.Go(func() error {
		_, err := s.users.FindByEmail(gctx, inv.Email)
		switch {
		case err == nil:
			existing = true
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup invitee")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.PublicDetails{
		Email:          inv.Email,
		Role:           inv.Role,
		FamilyName:     family.Name,
		IsExistingUser: existing,
		ExpiresAt:      inv.ExpiresAt,
	}, nil
}

// FindPendingByToken is the freshness check used before registering a new
// account: anything other than a live pending invitation is not actionable.
func (s *Service) FindPendingByToken(ctx context.Context, tok string) (*models.Invitation, error) {
	inv, err := s.findByToken(ctx, s.stores, tok)
	if err != nil {
		return nil, err
	}
	if !inv.IsPending() || inv.IsExpired(requestcontext.Now(ctx)) {
		return nil, models.ErrInvitationNotActionable
	}
	return inv, nil
}

// RedeemForExistingUser adds the logged-in user to the invitation's family and
// marks the invitation accepted, atomically. Redeeming an invitation the user
// already accepted returns the family unchanged.
func (s *Service) RedeemForExistingUser(ctx context.Context, tok string, userID id.UserID) (*familymodels.Family, error) {
	ctx, span := tracer.Start(ctx, "invitation.RedeemForExistingUser")
	defer span.End()
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveRedeem(start)
		}
	}()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, authmodels.ErrUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	family, err := s.redeem(ctx, tok, user, true)
	s.recordRedeem(err)
	return family, err
}

// AcceptForNewUser completes registration through an invitation: the freshly
// created user joins the family and the invitation is accepted in one
// transaction. The invitation must still be pending.
func (s *Service) AcceptForNewUser(ctx context.Context, tok string, user *authmodels.User) (*familymodels.Family, error) {
	ctx, span := tracer.Start(ctx, "invitation.AcceptForNewUser")
	defer span.End()

	family, err := s.redeem(ctx, tok, user, false)
	s.recordRedeem(err)
	return family, err
}

func (s *Service) redeem(ctx context.Context, tok string, user *authmodels.User, allowSettled bool) (*familymodels.Family, error) {
	now := requestcontext.Now(ctx)
	var family *familymodels.Family
	var accepted *models.Invitation
	var added, expired bool

	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores storage.Stores) error {
		inv, err := s.findByToken(ctx, stores, tok)
		if err != nil {
			return err
		}
		if !inv.IsPending() {
			if !allowSettled {
				return models.ErrInvitationNotActionable
			}
			family, err = s.resolveSettled(ctx, stores, inv, user)
			return err
		}
		if inv.IsExpired(now) {
			// Commit the transition, then report expiry outside the transaction.
			expired = true
			return s.expire(ctx, stores, inv, now)
		}
		if !email.Equal(user.Email, inv.Email) {
			return models.ErrUserEmailMismatch
		}

		family, added, err = s.join(ctx, stores, inv, user.ID, now)
		if err != nil {
			return err
		}

		from := inv.Status
		if err := inv.Accept(user.ID, now); err != nil {
			return err
		}
		if err := stores.Invitations.UpdateStatus(ctx, inv, from); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrInvalidState):
				return errLostRace
			case errors.Is(err, sentinel.ErrNotFound):
				return models.ErrInvitationNotFound
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to accept invitation")
		}
		accepted = inv
		return nil
	})
	if errors.Is(err, errLostRace) {
		return s.afterLostRace(ctx, tok, user, allowSettled)
	}
	if err != nil {
		return nil, s.translateTxError(err)
	}
	if expired {
		return nil, models.ErrInvitationExpired
	}
	if accepted == nil {
		// Settled invitation resolved idempotently.
		return family, nil
	}

	if added {
		audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventMemberAdded,
			"user_id", user.ID,
			"actor_id", user.ID,
			"family_id", family.ID,
			"role", accepted.Role,
			"via", "invitation",
		)
	}
	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventInvitationAccepted,
		"user_id", user.ID,
		"family_id", family.ID,
		"subject", accepted.ID,
	)
	if s.metrics != nil {
		s.metrics.IncrementTransition(models.StatusAccepted.String())
	}
	return family, nil
}

// join appends userID to the invitation's family unless they are already a
// member. The returned flag reports whether a member was added.
func (s *Service) join(ctx context.Context, stores storage.Stores, inv *models.Invitation, userID id.UserID, now time.Time) (*familymodels.Family, bool, error) {
	family, err := s.loadFamily(ctx, stores, inv.FamilyID, models.ErrFamilyMissing)
	if err != nil {
		return nil, false, err
	}
	if family.IsMember(userID) {
		return family, false, nil
	}

	updated, err := stores.Families.Execute(ctx, inv.FamilyID,
		func(f *familymodels.Family) error {
			return f.CanAddMember(userID, inv.Role)
		},
		func(f *familymodels.Family) {
			f.ApplyAddMember(userID, inv.Role, now)
		},
	)
	switch {
	case err == nil:
		return updated, true, nil
	case errors.Is(err, familymodels.ErrAlreadyMember):
		family, err := s.loadFamily(ctx, stores, inv.FamilyID, models.ErrFamilyMissing)
		return family, false, err
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, false, models.ErrFamilyMissing
	case errors.Is(err, sentinel.ErrConflict):
		return nil, false, familymodels.ErrConcurrentUpdate
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return nil, false, dErrors.Wrap(err, dErrors.CodeIntegrity, "family invariant violated on redeem")
	}
	return nil, false, err
}

// resolveSettled answers a redeem of an invitation that is no longer pending.
// Only the user it was accepted for gets a successful, idempotent answer.
func (s *Service) resolveSettled(ctx context.Context, stores storage.Stores, inv *models.Invitation, user *authmodels.User) (*familymodels.Family, error) {
	switch inv.Status {
	case models.StatusExpired:
		return nil, models.ErrInvitationExpired
	case models.StatusAccepted:
		if !inv.WasAcceptedBy(user.ID) && !email.Equal(user.Email, inv.Email) {
			return nil, models.ErrInvitationNotActionable
		}
		family, err := s.loadFamily(ctx, stores, inv.FamilyID, models.ErrFamilyMissing)
		if err != nil {
			return nil, err
		}
		if !family.IsMember(user.ID) {
			return nil, models.ErrInvitationNotActionable
		}
		return family, nil
	}
	return nil, models.ErrInvitationNotActionable
}

func (s *Service) afterLostRace(ctx context.Context, tok string, user *authmodels.User, allowSettled bool) (*familymodels.Family, error) {
	if !allowSettled {
		return nil, models.ErrInvitationNotActionable
	}
	inv, err := s.findByToken(ctx, s.stores, tok)
	if err != nil {
		return nil, err
	}
	return s.resolveSettled(ctx, s.stores, inv, user)
}

// ListFamilyInvitations returns every invitation of the family, newest first.
// Pending invitations past their expiry are expired on the way out.
func (s *Service) ListFamilyInvitations(ctx context.Context, familyID id.FamilyID, requestedBy id.UserID) ([]*models.Invitation, error) {
	family, err := s.loadFamily(ctx, s.stores, familyID, familymodels.ErrFamilyNotFound)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, family, requestedBy, policy.OpListInvitations); err != nil {
		return nil, err
	}

	invitations, err := s.stores.Invitations.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invitations")
	}
	now := requestcontext.Now(ctx)
	for _, inv := range invitations {
		if inv.IsPending() && inv.IsExpired(now) {
			if err := s.expire(ctx, s.stores, inv, now); err != nil {
				s.logger.WarnContext(ctx, "failed to expire invitation",
					"invitation_id", inv.ID.String(),
					"error", err,
				)
			}
		}
	}
	return invitations, nil
}

// RevokeInvitation withdraws a pending invitation.
func (s *Service) RevokeInvitation(ctx context.Context, invitationID id.InvitationID, requestedBy id.UserID) (*models.Invitation, error) {
	ctx, span := tracer.Start(ctx, "invitation.RevokeInvitation")
	defer span.End()

	inv, err := s.stores.Invitations.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrInvitationNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load invitation")
	}
	family, err := s.loadFamily(ctx, s.stores, inv.FamilyID, models.ErrFamilyMissing)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, family, requestedBy, policy.OpRevokeInvitation); err != nil {
		return nil, err
	}

	from := inv.Status
	if err := inv.Revoke(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.stores.Invitations.UpdateStatus(ctx, inv, from); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, models.ErrInvitationNotActionable
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke invitation")
	}

	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventInvitationRevoked,
		"user_id", requestedBy,
		"family_id", family.ID,
		"subject", inv.ID,
	)
	if s.metrics != nil {
		s.metrics.IncrementTransition(models.StatusRevoked.String())
	}
	return inv, nil
}

// expire moves a stale pending invitation to expired. Losing the race to
// another transition is not an error.
func (s *Service) expire(ctx context.Context, stores storage.Stores, inv *models.Invitation, now time.Time) error {
	from := inv.Status
	if err := inv.Expire(now); err != nil {
		return err
	}
	if err := stores.Invitations.UpdateStatus(ctx, inv, from); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to expire invitation")
	}
	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventInvitationExpired,
		"family_id", inv.FamilyID,
		"subject", inv.ID,
	)
	if s.metrics != nil {
		s.metrics.IncrementTransition(models.StatusExpired.String())
	}
	return nil
}

func (s *Service) findPending(ctx context.Context, tok string) (*models.Invitation, error) {
	inv, err := s.findByToken(ctx, s.stores, tok)
	if err != nil {
		return nil, err
	}
	if !inv.IsPending() {
		return nil, models.ErrInvitationNotFound
	}
	return inv, nil
}

func (s *Service) findByToken(ctx context.Context, stores storage.Stores, tok string) (*models.Invitation, error) {
	if !token.LooksValid(tok) {
		return nil, models.ErrInvitationNotFound
	}
	inv, err := stores.Invitations.FindByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrInvitationNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load invitation")
	}
	return inv, nil
}

// loadFamily reads a family, reporting a missing one as notFound. Callers that
// reach the family through an invitation pass the integrity error.
func (s *Service) loadFamily(ctx context.Context, stores storage.Stores, familyID id.FamilyID, notFound error) (*familymodels.Family, error) {
	family, err := stores.Families.FindByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, notFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family")
	}
	return family, nil
}

func (s *Service) authorize(ctx context.Context, family *familymodels.Family, actor id.UserID, op policy.Operation) error {
	decision := policy.CanPerform(family, actor, op, id.UserID{})
	if decision.Allowed {
		return nil
	}
	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventAccessDenied,
		"user_id", actor,
		"family_id", family.ID,
		"operation", string(op),
		"reason", string(decision.Reason),
	)
	return decision.Err()
}

func (s *Service) translateTxError(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "redeem transaction failed")
}

func (s *Service) recordRedeem(err error) {
	if s.metrics == nil {
		return
	}
	outcome := "accepted"
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvitationExpired):
		outcome = "expired"
	case errors.Is(err, models.ErrUserEmailMismatch):
		outcome = "email_mismatch"
	case errors.Is(err, models.ErrInvitationNotActionable):
		outcome = "not_actionable"
	case errors.Is(err, models.ErrInvitationNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	s.metrics.IncrementRedeem(outcome)
}
