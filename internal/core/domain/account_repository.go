package domain

import "context"

// AccountRepository defines the data-access contract for account records.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only — never on SQL or pgx directly.
type AccountRepository interface {
	// GetByCode returns the account matching the given account code.
	// Returns (nil, nil) when no account is found.
	GetByCode(ctx context.Context, accountCode string) (*AccountRow, error)

	// ExistsByCode returns true when an account with the given code exists.
	ExistsByCode(ctx context.Context, accountCode string) (bool, error)

	// Create inserts a new account and returns the stored row.
	// Returns ErrDuplicateAccount when the code is already taken.
	Create(ctx context.Context, accountCode, username, passwordHash string) (*AccountRow, error)

	// UpdateLastLogin sets the last_login timestamp to now for the given account.
	UpdateLastLogin(ctx context.Context, id int64) error
}
