package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"familyhub/pkg/requestcontext"
)

type fakeProducer struct {
	records  []*kgo.Record
	failWith error
	flushed  bool
	closed   bool
}

func (f *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.records = append(f.records, r)
	promise(r, f.failWith)
}

func (f *fakeProducer) Flush(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeProducer) Close() { f.closed = true }

func TestEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventUserCreated.Category())
	assert.Equal(t, CategorySecurity, EventAccessDenied.Category())
	assert.Equal(t, CategoryOperations, EventInvitationCreated.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("unknown").Category())
}

func TestKafkaPublisher(t *testing.T) {
	t.Run("records are keyed by family and carry the JSON event", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := NewKafkaPublisher(producer, "familyhub.audit", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

		err := pub.Emit(context.Background(), Event{
			Action:   string(EventMemberAdded),
			FamilyID: "fam-1",
			UserID:   "user-1",
		})
		require.NoError(t, err)
		require.Len(t, producer.records, 1)

		rec := producer.records[0]
		assert.Equal(t, "familyhub.audit", rec.Topic)
		assert.Equal(t, []byte("fam-1"), rec.Key)

		var decoded Event
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, string(EventMemberAdded), decoded.Action)
		assert.Equal(t, CategoryOperations, decoded.Category)
		assert.False(t, decoded.Timestamp.IsZero())
	})

	t.Run("delivery failures are logged not returned", func(t *testing.T) {
		var buf bytes.Buffer
		producer := &fakeProducer{failWith: errors.New("broker down")}
		pub := NewKafkaPublisher(producer, "familyhub.audit", slog.New(slog.NewTextHandler(&buf, nil)))

		err := pub.Emit(context.Background(), Event{Action: string(EventUserCreated)})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "failed to deliver audit event")
	})

	t.Run("close flushes and closes the client", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := NewKafkaPublisher(producer, "t", nil)
		require.NoError(t, pub.Close())
		assert.True(t, producer.flushed)
		assert.True(t, producer.closed)
	})
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, pub.Emit(context.Background(), Event{
		Action:   string(EventInvitationRevoked),
		FamilyID: "fam-1",
	}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "invitation_revoked", line["action"])
	assert.Equal(t, "security", line["category"])
	assert.Equal(t, "audit_sink", line["log_type"])
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Emit(_ context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestLogAudit(t *testing.T) {
	t.Run("maps attributes onto the event", func(t *testing.T) {
		var buf bytes.Buffer
		pub := &recordingPublisher{}
		ctx := requestcontext.WithRequestID(context.Background(), "req-1")

		LogAudit(ctx, slog.New(slog.NewJSONHandler(&buf, nil)), pub, EventMemberRemoved,
			"family_id", "fam-1",
			"user_id", "user-2",
			"actor_id", "user-1",
		)

		require.Len(t, pub.events, 1)
		ev := pub.events[0]
		assert.Equal(t, "member_removed", ev.Action)
		assert.Equal(t, CategorySecurity, ev.Category)
		assert.Equal(t, "fam-1", ev.FamilyID)
		assert.Equal(t, "user-2", ev.UserID)
		assert.Equal(t, "user-2", ev.Subject)
		assert.Equal(t, "user-1", ev.ActorID)
		assert.Equal(t, "req-1", ev.RequestID)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "audit", line["log_type"])
		assert.Equal(t, "member_removed", line["event"])
		assert.Equal(t, "req-1", line["request_id"])
	})

	t.Run("publisher errors are only logged", func(t *testing.T) {
		var buf bytes.Buffer
		pub := &recordingPublisher{err: errors.New("sink down")}

		LogAudit(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)), pub, EventUserCreated)

		assert.Contains(t, buf.String(), "failed to emit audit event")
	})

	t.Run("nil publisher and logger are tolerated", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogAudit(context.Background(), nil, nil, EventFamilyCreated, "family_id", "fam-1")
		})
	})
}
