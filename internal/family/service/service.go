package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	authmodels "familyhub/internal/auth/models"
	"familyhub/internal/family/metrics"
	"familyhub/internal/family/models"
	"familyhub/internal/family/policy"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/email"
	"familyhub/pkg/platform/audit"
	"familyhub/pkg/platform/sentinel"
	"familyhub/pkg/requestcontext"
)

var tracer = otel.Tracer("familyhub/internal/family/service")

var ErrNoAccountForEmail = dErrors.New(dErrors.CodeNotFound, "no account exists for this email, send an invitation instead")

type FamilyStore interface {
	Create(ctx context.Context, family *models.Family) error
	FindByID(ctx context.Context, familyID id.FamilyID) (*models.Family, error)
	ListByMember(ctx context.Context, userID id.UserID) ([]*models.Family, error)
	Execute(ctx context.Context, familyID id.FamilyID, validate func(*models.Family) error, mutate func(*models.Family)) (*models.Family, error)
}

// UserDirectory resolves accounts by email for direct adds.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*authmodels.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the family use cases. Every mutation goes through
// FamilyStore.Execute so the guard decision and the write see the same state.
type Service struct {
	families       FamilyStore
	users          UserDirectory
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

func New(families FamilyStore, users UserDirectory, opts ...Option) (*Service, error) {
	if families == nil {
		return nil, errors.New("family store is required")
	}
	if users == nil {
		return nil, errors.New("user directory is required")
	}
	s := &Service{
		families: families,
		users:    users,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UpdateFamilyRequest carries the optional fields of a family update.
type UpdateFamilyRequest struct {
	FamilyID     id.FamilyID
	RequestedBy  id.UserID
	Name         *string
	Timezone     *string
	WeekStartsOn *string
}

// AddMemberRequest adds an existing account to a family without an invitation.
type AddMemberRequest struct {
	FamilyID    id.FamilyID
	Email       string
	Role        string
	RequestedBy id.UserID
}

// CreateFamily creates a family whose only member is the creator, enrolled as
// primary user.
func (s *Service) CreateFamily(ctx context.Context, name string, creatorID id.UserID) (*models.Family, error) {
	ctx, span := tracer.Start(ctx, "family.CreateFamily")
	defer span.End()

	family, err := models.NewFamily(id.NewFamilyID(), name, creatorID, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}
	if err := s.families.Create(ctx, family); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create family")
	}
	span.SetAttributes(attribute.String("family_id", family.ID.String()))

	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventFamilyCreated,
		"user_id", creatorID,
		"family_id", family.ID,
	)
	if s.metrics != nil {
		s.metrics.IncrementFamilyCreated()
	}
	return family, nil
}

// GetFamily returns the family if requestedBy is one of its members.
func (s *Service) GetFamily(ctx context.Context, familyID id.FamilyID, requestedBy id.UserID) (*models.Family, error) {
	family, err := s.families.FindByID(ctx, familyID)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to load family")
	}
	if err := s.authorize(ctx, family, requestedBy, policy.OpViewFamily, id.UserID{}); err != nil {
		return nil, err
	}
	return family, nil
}

// ListMine returns every family userID belongs to, oldest first.
func (s *Service) ListMine(ctx context.Context, userID id.UserID) ([]*models.Family, error) {
	families, err := s.families.ListByMember(ctx, userID)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to list families")
	}
	return families, nil
}

// UpdateFamily renames the family and/or changes its settings.
func (s *Service) UpdateFamily(ctx context.Context, req UpdateFamilyRequest) (*models.Family, error) {
	ctx, span := tracer.Start(ctx, "family.UpdateFamily")
	defer span.End()
	defer s.observe("update_family", time.Now())

	now := requestcontext.Now(ctx)
	var name string
	var settings models.Settings
	updated, err := s.families.Execute(ctx, req.FamilyID,
		func(f *models.Family) error {
			if err := s.authorize(ctx, f, req.RequestedBy, policy.OpUpdateFamily, id.UserID{}); err != nil {
				return err
			}
			name = f.Name
			if req.Name != nil {
				candidate := f.Clone()
				if err := candidate.Rename(*req.Name, now); err != nil {
					return asValidation(err)
				}
				name = candidate.Name
			}
			settings = f.Settings.Merge(req.Timezone, req.WeekStartsOn)
			return settings.Validate()
		},
		func(f *models.Family) {
			f.Name = name
			f.Settings = settings
			f.UpdatedAt = now
		},
	)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to update family")
	}

	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventFamilyUpdated,
		"user_id", req.RequestedBy,
		"family_id", updated.ID,
	)
	return updated, nil
}

// AddMemberDirect enrolls an existing account by email, skipping the
// invitation flow.
func (s *Service) AddMemberDirect(ctx context.Context, req AddMemberRequest) (*models.Family, error) {
	ctx, span := tracer.Start(ctx, "family.AddMemberDirect")
	defer span.End()
	defer s.observe("add_member", time.Now())

	// The guard runs before input parsing and the account lookup so
	// non-creators learn nothing about the input or which emails have accounts.
	family, err := s.families.FindByID(ctx, req.FamilyID)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to load family")
	}
	if err := s.authorize(ctx, family, req.RequestedBy, policy.OpAddMember, id.UserID{}); err != nil {
		return nil, err
	}

	emailAddr, err := email.NormalizeAndValidate(req.Email)
	if err != nil {
		return nil, err
	}
	role, err := models.ParseAssignableRole(req.Role)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNoAccountForEmail
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}

	now := requestcontext.Now(ctx)
	updated, err := s.families.Execute(ctx, req.FamilyID,
		func(f *models.Family) error {
			if err := s.authorize(ctx, f, req.RequestedBy, policy.OpAddMember, id.UserID{}); err != nil {
				return err
			}
			return f.CanAddMember(user.ID, role)
		},
		func(f *models.Family) {
			f.ApplyAddMember(user.ID, role, now)
		},
	)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to add member")
	}

	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventMemberAdded,
		"user_id", user.ID,
		"actor_id", req.RequestedBy,
		"family_id", updated.ID,
		"role", role,
		"via", "direct",
	)
	s.countChange("added")
	return updated, nil
}

// RemoveMember removes memberID from the family. The creator can never be
// removed, not even by themselves.
func (s *Service) RemoveMember(ctx context.Context, familyID id.FamilyID, memberID, requestedBy id.UserID) (*models.Family, error) {
	ctx, span := tracer.Start(ctx, "family.RemoveMember")
	defer span.End()
	defer s.observe("remove_member", time.Now())

	now := requestcontext.Now(ctx)
	updated, err := s.families.Execute(ctx, familyID,
		func(f *models.Family) error {
			if err := s.authorize(ctx, f, requestedBy, policy.OpRemoveMember, memberID); err != nil {
				return err
			}
			return f.CanRemoveMember(memberID)
		},
		func(f *models.Family) {
			f.ApplyRemoval(memberID, now)
		},
	)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to remove member")
	}

	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventMemberRemoved,
		"user_id", memberID,
		"actor_id", requestedBy,
		"family_id", familyID,
	)
	s.countChange("removed")
	return updated, nil
}

// ChangeMemberRole sets memberID's role to admin or member.
func (s *Service) ChangeMemberRole(ctx context.Context, familyID id.FamilyID, memberID id.UserID, newRole string, requestedBy id.UserID) (*models.Family, error) {
	ctx, span := tracer.Start(ctx, "family.ChangeMemberRole")
	defer span.End()
	defer s.observe("change_member_role", time.Now())

	now := requestcontext.Now(ctx)
	var previous, role models.Role
	updated, err := s.families.Execute(ctx, familyID,
		func(f *models.Family) error {
			if err := s.authorize(ctx, f, requestedBy, policy.OpChangeRole, memberID); err != nil {
				return err
			}
			parsed, err := models.ParseRole(newRole)
			if err != nil {
				return err
			}
			role = parsed
			previous = f.RoleOf(memberID)
			return f.CanChangeRole(memberID, role)
		},
		func(f *models.Family) {
			f.ApplyRoleChange(memberID, role, now)
		},
	)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to change member role")
	}

	audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventMemberRoleChanged,
		"user_id", memberID,
		"actor_id", requestedBy,
		"family_id", familyID,
		"from_role", previous,
		"to_role", role,
	)
	s.countChange("role_changed")
	return updated, nil
}

// authorize consults the membership guard and records denials.
func (s *Service) authorize(ctx context.Context, family *models.Family, actor id.UserID, op policy.Operation, target id.UserID) error {
	decision := policy.CanPerform(family, actor, op, target)
	if decision.Allowed {
		return nil
	}
	// Target checks are reported as bad requests, not security events.
	if decision.Reason == policy.ReasonNotMember || decision.Reason == policy.ReasonNotCreator {
		audit.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventAccessDenied,
			"user_id", actor,
			"family_id", family.ID,
			"operation", string(op),
			"reason", string(decision.Reason),
		)
	}
	if s.metrics != nil {
		s.metrics.IncrementAccessDenied(string(op), string(decision.Reason))
	}
	return decision.Err()
}

func (s *Service) translateStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return models.ErrFamilyNotFound
	case errors.Is(err, sentinel.ErrConflict):
		return models.ErrConcurrentUpdate
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return dErrors.Wrap(err, dErrors.CodeIntegrity, "family invariant violated on write")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// asValidation reports constructor invariant failures on caller input as
// validation errors.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveMutation(op, start)
	}
}

func (s *Service) countChange(kind string) {
	if s.metrics != nil {
		s.metrics.IncrementMembershipChange(kind)
	}
}
