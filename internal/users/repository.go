package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListRecords(ctx context.Context) ([]Record, error) {
	query := `SELECT id, username, user_id, user_role FROM userlist ORDER BY id`

	var records []Record
	err := r.db.SelectContext(ctx, &records, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return records, nil
}

func (r *Repository) GetRecordByUserID(ctx context.Context, userID int64) (*Record, error) {
	query := `SELECT id, username, user_id, user_role FROM userlist WHERE user_id = $1`

	var record Record
	err := r.db.GetContext(ctx, &record, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by user_id: %w", err)
	}
	return &record, nil
}

func (r *Repository) CreateRecord(ctx context.Context, username string, userID int64, role string) (*Record, error) {
	query := `
		INSERT INTO userlist (username, user_id, user_role)
		VALUES ($1, $2, $3)
		RETURNING id, username, user_id, user_role
	`

	var record Record
	err := r.db.GetContext(ctx, &record, query, username, userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &record, nil
}

// DeleteAllRecords removes every user row and resets the id sequence to
// follow the (now absent) max id.
func (r *Repository) DeleteAllRecords(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM userlist`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete users: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	_, err = r.db.ExecContext(ctx, `
		SELECT setval(
			pg_get_serial_sequence('userlist', 'id'),
			COALESCE((SELECT MAX(id) FROM userlist), 0) + 1,
			false
		)
	`)
	if err != nil {
		return int(affected), fmt.Errorf("failed to reset userlist id sequence: %w", err)
	}

	return int(affected), nil
}

func (r *Repository) CreateWebUser(ctx context.Context, login, passwordHash string, email, phone *string) (*WebUser, error) {
	query := `
		INSERT INTO web_users (login, password_hash, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, login, email, phone, password_hash, created_at, updated_at
	`

	var user WebUser
	err := r.db.GetContext(ctx, &user, query, login, passwordHash, email, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to create web user: %w", err)
	}
	return &user, nil
}

func (r *Repository) GetWebUserByLogin(ctx context.Context, login string) (*WebUser, error) {
	query := `
		SELECT id, login, email, phone, password_hash, created_at, updated_at
		FROM web_users
		WHERE login = $1
	`

	var user WebUser
	err := r.db.GetContext(ctx, &user, query, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get web user by login: %w", err)
	}
	return &user, nil
}
