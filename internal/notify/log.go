package notify

import (
	"context"
	"log/slog"
)

// LogNotifier stands in for a mail provider in development. It records that
// an email would have been sent, without the accept link.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendInvitation(ctx context.Context, msg InvitationEmail) error {
	n.logger.InfoContext(ctx, "invitation email (log delivery)",
		"invitation_id", msg.InvitationID.String(),
		"to", msg.To,
		"family", msg.FamilyName,
		"role", msg.Role,
		"expires_at", msg.ExpiresAt,
	)
	return nil
}
