package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers account creation and deletion.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authorization denials and membership removals.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine family and invitation activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// UserID is the user the action was performed on, ActorID the user who performed it.
	UserID    string `json:"user_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	FamilyID  string `json:"family_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

type AuditEvent string

const (
	// Account events
	EventUserCreated     AuditEvent = "user_created"
	EventUserDeleted     AuditEvent = "user_deleted"
	EventUserLoggedIn    AuditEvent = "user_logged_in"
	EventUserLoginFailed AuditEvent = "user_login_failed"

	// Family events
	EventFamilyCreated     AuditEvent = "family_created"
	EventFamilyUpdated     AuditEvent = "family_updated"
	EventMemberAdded       AuditEvent = "member_added"
	EventMemberRemoved     AuditEvent = "member_removed"
	EventMemberRoleChanged AuditEvent = "member_role_changed"
	EventAccessDenied      AuditEvent = "family_access_denied"

	// Invitation events
	EventInvitationCreated  AuditEvent = "invitation_created"
	EventInvitationAccepted AuditEvent = "invitation_accepted"
	EventInvitationExpired  AuditEvent = "invitation_expired"
	EventInvitationRevoked  AuditEvent = "invitation_revoked"
	EventInvitationNotified AuditEvent = "invitation_notified"

	// Onboarding events
	EventRegisteredViaInvitation AuditEvent = "registered_via_invitation"
	EventOnboardingRolledBack    AuditEvent = "onboarding_rolled_back"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:             CategoryCompliance,
	EventUserDeleted:             CategoryCompliance,
	EventRegisteredViaInvitation: CategoryCompliance,
	EventOnboardingRolledBack:    CategoryCompliance,

	EventUserLoginFailed:   CategorySecurity,
	EventAccessDenied:      CategorySecurity,
	EventMemberRemoved:     CategorySecurity,
	EventMemberRoleChanged: CategorySecurity,
	EventInvitationRevoked: CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
