package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"familyhub/internal/family/models"
	pg "familyhub/internal/platform/postgres"
	id "familyhub/pkg/domain"
	"familyhub/pkg/platform/sentinel"
	"familyhub/pkg/platform/tx"
)

// FamilyStore persists families in the families table and their rosters in
// family_members. The roster is rewritten as a whole on every Execute.
type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

const familyColumns = `id, name, creator_id, timezone, week_starts_on, version, created_at, updated_at`

func (s *FamilyStore) Create(ctx context.Context, family *models.Family) error {
	if err := family.CheckInvariants(); err != nil {
		return err
	}
	return tx.Within(ctx, s.db, func(q tx.Querier) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO families (`+familyColumns+`)
			VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
		`,
			family.ID,
			family.Name,
			family.CreatorID,
			family.Settings.Timezone,
			family.Settings.WeekStartsOn,
			family.CreatedAt,
			family.UpdatedAt,
		)
		if err != nil {
			if _, ok := pg.UniqueViolation(err); ok {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("insert family: %w", err)
		}
		if err := insertMembers(ctx, q, family); err != nil {
			return err
		}
		family.Version = 1
		return nil
	})
}

func (s *FamilyStore) FindByID(ctx context.Context, familyID id.FamilyID) (*models.Family, error) {
	q := tx.Conn(ctx, s.db)
	family, err := scanFamily(q.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE id = $1`, familyID))
	if err != nil {
		return nil, err
	}
	if family.Members, err = loadMembers(ctx, q, familyID); err != nil {
		return nil, err
	}
	return family, nil
}

func (s *FamilyStore) ListByMember(ctx context.Context, userID id.UserID) ([]*models.Family, error) {
	q := tx.Conn(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT f.id, f.name, f.creator_id, f.timezone, f.week_starts_on, f.version, f.created_at, f.updated_at
		FROM families f
		JOIN family_members m ON m.family_id = f.id
		WHERE m.user_id = $1
		ORDER BY f.created_at, f.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	var families []*models.Family
	for rows.Next() {
		family, err := scanFamily(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		families = append(families, family)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("list families: %w", err)
	}
	_ = rows.Close()

	for _, family := range families {
		if family.Members, err = loadMembers(ctx, q, family.ID); err != nil {
			return nil, err
		}
	}
	return families, nil
}

// Execute locks the family row with FOR UPDATE, applies the callbacks and
// writes back with a version check. The roster is replaced inside the same
// transaction, so concurrent writers serialize on the row lock.
func (s *FamilyStore) Execute(ctx context.Context, familyID id.FamilyID, validate func(*models.Family) error, mutate func(*models.Family)) (*models.Family, error) {
	var result *models.Family
	err := tx.Within(ctx, s.db, func(q tx.Querier) error {
		family, err := scanFamily(q.QueryRowContext(ctx,
			`SELECT `+familyColumns+` FROM families WHERE id = $1 FOR UPDATE`, familyID))
		if err != nil {
			return err
		}
		if family.Members, err = loadMembers(ctx, q, familyID); err != nil {
			return err
		}

		if validate != nil {
			if err := validate(family); err != nil {
				return err
			}
		}
		mutate(family)
		if err := family.CheckInvariants(); err != nil {
			return err
		}

		res, err := q.ExecContext(ctx, `
			UPDATE families
			SET name = $2, timezone = $3, week_starts_on = $4, version = version + 1, updated_at = $5
			WHERE id = $1 AND version = $6
		`,
			family.ID,
			family.Name,
			family.Settings.Timezone,
			family.Settings.WeekStartsOn,
			family.UpdatedAt,
			family.Version,
		)
		if err != nil {
			return fmt.Errorf("update family: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update family rows affected: %w", err)
		}
		if rows == 0 {
			return sentinel.ErrConflict
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM family_members WHERE family_id = $1`, familyID); err != nil {
			return fmt.Errorf("clear family members: %w", err)
		}
		if err := insertMembers(ctx, q, family); err != nil {
			return err
		}
		family.Version++
		result = family
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func insertMembers(ctx context.Context, q tx.Querier, family *models.Family) error {
	for i, m := range family.Members {
		permissions := m.Permissions
		if permissions == nil {
			permissions = []string{}
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO family_members (family_id, user_id, role, position, joined_at, permissions)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, family.ID, m.UserID, string(m.Role), i, m.JoinedAt, pq.Array(permissions))
		if err != nil {
			if _, ok := pg.UniqueViolation(err); ok {
				return models.ErrAlreadyMember
			}
			return fmt.Errorf("insert family member: %w", err)
		}
	}
	return nil
}

func loadMembers(ctx context.Context, q tx.Querier, familyID id.FamilyID) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT user_id, role, joined_at, permissions
		FROM family_members
		WHERE family_id = $1
		ORDER BY position
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("load family members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var role string
		var permissions pq.StringArray
		if err := rows.Scan(&m.UserID, &role, &m.JoinedAt, &permissions); err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		m.Role = models.Role(role)
		if len(permissions) > 0 {
			m.Permissions = []string(permissions)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFamily(row rowScanner) (*models.Family, error) {
	var f models.Family
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.CreatorID,
		&f.Settings.Timezone,
		&f.Settings.WeekStartsOn,
		&f.Version,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan family: %w", err)
	}
	return &f, nil
}
