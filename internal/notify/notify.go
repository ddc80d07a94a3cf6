// Package notify delivers invitation emails outside the request path.
// Delivery is best effort: failures are logged and never reach the caller.
package notify

import (
	"context"
	"time"

	id "familyhub/pkg/domain"
)

// InvitationEmail is everything a notifier needs to tell someone they were
// invited. AcceptURL embeds the token and must not be logged.
type InvitationEmail struct {
	InvitationID id.InvitationID
	To           string
	FamilyName   string
	Role         string
	AcceptURL    string
	ExpiresAt    time.Time
}

// Notifier sends a single invitation email.
type Notifier interface {
	SendInvitation(ctx context.Context, msg InvitationEmail) error
}
