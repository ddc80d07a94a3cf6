package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"familyhub/internal/auth/models"
	"familyhub/internal/platform/postgres"
	id "familyhub/pkg/domain"
	"familyhub/pkg/platform/sentinel"
	"familyhub/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL. Email uniqueness is enforced by the
// users_email_key constraint.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, first_name, last_name, password_hash, verified, created_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Verified,
		user.CreatedAt,
	)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(tx.Conn(ctx, s.db).QueryRowContext(ctx, query, userID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanOne(tx.Conn(ctx, s.db).QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := tx.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
