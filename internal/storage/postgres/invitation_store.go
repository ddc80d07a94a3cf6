package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	familymodels "familyhub/internal/family/models"
	"familyhub/internal/invitation/models"
	pg "familyhub/internal/platform/postgres"
	"familyhub/internal/storage"
	id "familyhub/pkg/domain"
	"familyhub/pkg/platform/sentinel"
	"familyhub/pkg/platform/tx"
)

const (
	constraintTokenKey   = "invitations_token_key"
	constraintOnePending = "invitations_one_pending"
)

// InvitationStore persists invitations. The invitations_one_pending partial
// index guarantees a single pending row per (family_id, email).
type InvitationStore struct {
	db *sql.DB
}

func NewInvitationStore(db *sql.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

const invitationColumns = `id, family_id, email, role, invited_by, token, status, expires_at, created_at, updated_at, accepted_by, accepted_at`

func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		inv.ID,
		inv.FamilyID,
		inv.Email,
		string(inv.Role),
		inv.InvitedBy,
		inv.Token,
		string(inv.Status),
		inv.ExpiresAt,
		inv.CreatedAt,
		inv.UpdatedAt,
		inv.AcceptedBy,
		inv.AcceptedAt,
	)
	if err == nil {
		return nil
	}
	if constraint, ok := pg.UniqueViolation(err); ok {
		switch constraint {
		case constraintOnePending:
			return storage.ErrPendingInvitationExists
		case constraintTokenKey:
			return storage.ErrTokenTaken
		default:
			return sentinel.ErrAlreadyUsed
		}
	}
	if pg.IsForeignKeyViolation(err) {
		return sentinel.ErrNotFound
	}
	return fmt.Errorf("insert invitation: %w", err)
}

func (s *InvitationStore) FindByID(ctx context.Context, invitationID id.InvitationID) (*models.Invitation, error) {
	return scanInvitation(tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, invitationID))
}

func (s *InvitationStore) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return scanInvitation(tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token))
}

func (s *InvitationStore) FindPending(ctx context.Context, familyID id.FamilyID, email string) (*models.Invitation, error) {
	return scanInvitation(tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE family_id = $1 AND email = $2 AND status = 'pending'`,
		familyID, email))
}

func (s *InvitationStore) ListByFamily(ctx context.Context, familyID id.FamilyID) ([]*models.Invitation, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE family_id = $1 ORDER BY created_at DESC, id`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// UpdateStatus is a compare-and-set on status. When no row matches it tells a
// missing invitation apart from a lost race.
func (s *InvitationStore) UpdateStatus(ctx context.Context, inv *models.Invitation, from models.Status) error {
	q := tx.Conn(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE invitations
		SET status = $3, updated_at = $4, accepted_by = $5, accepted_at = $6
		WHERE id = $1 AND status = $2
	`,
		inv.ID,
		string(from),
		string(inv.Status),
		inv.UpdatedAt,
		inv.AcceptedBy,
		inv.AcceptedAt,
	)
	if err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update invitation rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM invitations WHERE id = $1)`, inv.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check invitation: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	var inv models.Invitation
	var role, status string
	err := row.Scan(
		&inv.ID,
		&inv.FamilyID,
		&inv.Email,
		&role,
		&inv.InvitedBy,
		&inv.Token,
		&status,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.AcceptedBy,
		&inv.AcceptedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan invitation: %w", err)
	}
	inv.Role = familymodels.Role(role)
	inv.Status = models.Status(status)
	return &inv, nil
}
