package audit

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"familyhub/pkg/attrs"
	"familyhub/pkg/requestcontext"
)

// Publisher is the sink every service emits audit events to.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// LogAudit writes the audit line to logger and forwards a structured event to
// publisher. Publisher failures are logged, never returned.
//
// Recognized attribute keys: user_id, actor_id, family_id, subject, reason.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Publisher, event AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	traceID := ""
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
		attributes = append(attributes, "trace_id", traceID)
	}

	args := append(attributes, "event", string(event), "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}
	if publisher == nil {
		return
	}

	userID := attrs.ExtractString(attributes, "user_id")
	subject := attrs.ExtractString(attributes, "subject")
	if subject == "" {
		subject = userID
	}
	err := publisher.Emit(ctx, Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		Action:    string(event),
		UserID:    userID,
		ActorID:   attrs.ExtractString(attributes, "actor_id"),
		FamilyID:  attrs.ExtractString(attributes, "family_id"),
		Subject:   subject,
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestID,
		TraceID:   traceID,
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
