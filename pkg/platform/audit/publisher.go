package audit

import (
	"context"
	"log/slog"
	"time"
)

// LogPublisher writes audit events as structured log lines. It is the fallback
// sink when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	event = normalize(event)
	p.logger.InfoContext(ctx, "audit event",
		"log_type", "audit_sink",
		"category", event.Category,
		"action", event.Action,
		"user_id", event.UserID,
		"actor_id", event.ActorID,
		"family_id", event.FamilyID,
		"subject", event.Subject,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"trace_id", event.TraceID,
		"timestamp", event.Timestamp,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// normalize fills in the timestamp and category when the emitter left them blank.
func normalize(event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	return event
}
