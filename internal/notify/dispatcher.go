package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"familyhub/pkg/platform/audit"
)

const defaultSendTimeout = 10 * time.Second

var ErrDispatcherClosed = errors.New("dispatcher is closed")

// ResultRecorder counts delivery outcomes: sent, duplicate, failed, dropped.
type ResultRecorder interface {
	IncrementNotification(result string)
}

// Dispatcher sends invitation emails on background goroutines. A send outlives
// the request that triggered it but is bounded by the send timeout.
type Dispatcher struct {
	notifier       Notifier
	deduper        Deduper
	logger         *slog.Logger
	auditPublisher audit.Publisher
	recorder       ResultRecorder
	timeout        time.Duration

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

type DispatcherOption func(*Dispatcher)

func WithDeduper(d Deduper) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.deduper = d
	}
}

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) DispatcherOption {
	return func(d *Dispatcher) {
		d.auditPublisher = publisher
	}
}

func WithResultRecorder(r ResultRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func NewDispatcher(notifier Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		logger:   slog.Default(),
		timeout:  defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch schedules msg for delivery and returns immediately. Request
// cancellation does not abort the send.
func (d *Dispatcher) Dispatch(ctx context.Context, msg InvitationEmail) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.WarnContext(ctx, "invitation email dropped",
			"invitation_id", msg.InvitationID.String(),
			"error", ErrDispatcherClosed,
		)
		d.record("dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	sendCtx := context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		d.send(sendCtx, msg)
	}()
}

func (d *Dispatcher) send(ctx context.Context, msg InvitationEmail) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.deduper != nil {
		first, err := d.deduper.Claim(ctx, msg.InvitationID.String())
		if err != nil {
			// A broken dedupe store must not block delivery.
			d.logger.WarnContext(ctx, "invitation email dedupe check failed",
				"invitation_id", msg.InvitationID.String(),
				"error", err,
			)
		} else if !first {
			d.logger.InfoContext(ctx, "invitation email already sent",
				"invitation_id", msg.InvitationID.String(),
			)
			d.record("duplicate")
			return
		}
	}

	if err := d.notifier.SendInvitation(ctx, msg); err != nil {
		d.logger.ErrorContext(ctx, "failed to send invitation email",
			"invitation_id", msg.InvitationID.String(),
			"error", err,
		)
		d.record("failed")
		return
	}
	d.record("sent")
	audit.LogAudit(ctx, d.logger, d.auditPublisher, audit.EventInvitationNotified,
		"subject", msg.InvitationID,
		"invitation_id", msg.InvitationID,
	)
}

func (d *Dispatcher) record(result string) {
	if d.recorder != nil {
		d.recorder.IncrementNotification(result)
	}
}

// Shutdown stops accepting new sends and waits for in-flight ones until ctx
// is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
