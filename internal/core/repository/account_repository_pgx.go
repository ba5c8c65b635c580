package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agentgate/auth-service/internal/core/domain"
)

// DB is the subset of pgxpool.Pool the repository needs.
// Narrowing to an interface lets tests substitute pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxAccountRepository implements domain.AccountRepository using pgx.
type PgxAccountRepository struct {
	db DB
}

// NewAccountRepository creates a new PgxAccountRepository.
func NewAccountRepository(db DB) *PgxAccountRepository {
	return &PgxAccountRepository{db: db}
}

// GetByCode returns the account matching the given account code.
// Returns (nil, nil) when no account is found.
func (r *PgxAccountRepository) GetByCode(ctx context.Context, accountCode string) (*domain.AccountRow, error) {
	query := `
		SELECT id, account_code, username, password_hash, created_at, last_login
		FROM accounts
		WHERE account_code = $1
	`

	var row domain.AccountRow
	err := r.db.QueryRow(ctx, query, accountCode).Scan(
		&row.ID, &row.AccountCode, &row.Username, &row.PasswordHash,
		&row.CreatedAt, &row.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query account %q: %w", accountCode, err)
	}

	return &row, nil
}

// ExistsByCode returns true when an account with the given code exists.
func (r *PgxAccountRepository) ExistsByCode(ctx context.Context, accountCode string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_code = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, accountCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("check account %q: %w", accountCode, err)
	}

	return exists, nil
}

// Create inserts a new account and returns the stored row.
// A unique violation on account_code maps to domain.ErrDuplicateAccount,
// closing the check-then-insert race under concurrent registration.
func (r *PgxAccountRepository) Create(ctx context.Context, accountCode, username, passwordHash string) (*domain.AccountRow, error) {
	query := `
		INSERT INTO accounts (account_code, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, account_code, username, password_hash, created_at, last_login
	`

	var row domain.AccountRow
	err := r.db.QueryRow(ctx, query, accountCode, username, passwordHash).Scan(
		&row.ID, &row.AccountCode, &row.Username, &row.PasswordHash,
		&row.CreatedAt, &row.LastLogin,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("insert account %q: %w", accountCode, err)
	}

	return &row, nil
}

// UpdateLastLogin sets the last_login timestamp to now for the given account.
func (r *PgxAccountRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	query := `UPDATE accounts SET last_login = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("update last_login for account %d: %w", id, err)
	}
	return nil
}
