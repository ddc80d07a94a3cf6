// Package memory provides in-process family and invitation tables for
// development and tests. Transactions copy the tables, run against the copy
// and swap it in on success.
package memory

import (
	"context"
	"sync"
	"time"

	familymodels "familyhub/internal/family/models"
	invitationmodels "familyhub/internal/invitation/models"
	"familyhub/internal/storage"
	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

type pendingKey struct {
	familyID id.FamilyID
	email    string
}

type tables struct {
	families    map[id.FamilyID]*familymodels.Family
	invitations map[id.InvitationID]*invitationmodels.Invitation
	byToken     map[string]id.InvitationID
	pending     map[pendingKey]id.InvitationID
}

func newTables() *tables {
	return &tables{
		families:    make(map[id.FamilyID]*familymodels.Family),
		invitations: make(map[id.InvitationID]*invitationmodels.Invitation),
		byToken:     make(map[string]id.InvitationID),
		pending:     make(map[pendingKey]id.InvitationID),
	}
}

// clone copies the indexes. Records are copy-on-write: writers always replace
// the pointer, so sharing them between snapshots is safe.
func (t *tables) clone() *tables {
	c := &tables{
		families:    make(map[id.FamilyID]*familymodels.Family, len(t.families)),
		invitations: make(map[id.InvitationID]*invitationmodels.Invitation, len(t.invitations)),
		byToken:     make(map[string]id.InvitationID, len(t.byToken)),
		pending:     make(map[pendingKey]id.InvitationID, len(t.pending)),
	}
	for k, v := range t.families {
		c.families[k] = v
	}
	for k, v := range t.invitations {
		c.invitations[k] = v
	}
	for k, v := range t.byToken {
		c.byToken[k] = v
	}
	for k, v := range t.pending {
		c.pending[k] = v
	}
	return c
}

type txKey struct{ db *DB }

// DB holds the family and invitation tables behind a single mutex.
type DB struct {
	mu      sync.Mutex
	data    *tables
	timeout time.Duration
}

// Option configures a DB.
type Option func(*DB)

// WithTxTimeout bounds transactions whose context carries no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.timeout = d
		}
	}
}

func New(opts ...Option) *DB {
	db := &DB{data: newTables(), timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Families returns the family store backed by db.
func (db *DB) Families() *FamilyStore { return &FamilyStore{db: db} }

// Invitations returns the invitation store backed by db.
func (db *DB) Invitations() *InvitationStore { return &InvitationStore{db: db} }

// Stores returns both stores for use with RunInTx callers.
func (db *DB) Stores() storage.Stores {
	return storage.Stores{Families: db.Families(), Invitations: db.Invitations()}
}

// RunInTx runs fn against a private copy of the tables and publishes the copy
// only if fn succeeds. Nested calls join the outer transaction.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, stores storage.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := ctx.Value(txKey{db}).(*tables); ok {
		return fn(ctx, db.Stores())
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.timeout)
		defer cancel()
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	work := db.data.clone()
	txCtx := context.WithValue(ctx, txKey{db}, work)
	if err := fn(txCtx, db.Stores()); err != nil {
		return err
	}
	if err := txCtx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted before commit")
	}
	db.data = work
	return nil
}

// view runs fn against the transaction's tables when ctx carries one and
// against the live tables under the lock otherwise.
func (db *DB) view(ctx context.Context, fn func(t *tables) error) error {
	if t, ok := ctx.Value(txKey{db}).(*tables); ok {
		return fn(t)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.data)
}
