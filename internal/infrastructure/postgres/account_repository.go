package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jdgtl/project-october/internal/domain/account"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, item_id, plaid_account_id, name, account_type, subtype, mask, deleted_at, created_at, updated_at`

func scanAccount(scan func(dest ...any) error) (*account.Account, error) {
	var acc account.Account
	var accountType, subtype, mask sql.NullString
	var deletedAt sql.NullTime

	err := scan(
		&acc.ID, &acc.UserID, &acc.ItemID, &acc.PlaidAccountID, &acc.Name,
		&accountType, &subtype, &mask, &deletedAt,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountType.Valid {
		acc.AccountType = &accountType.String
	}
	if subtype.Valid {
		acc.Subtype = &subtype.String
	}
	if mask.Valid {
		acc.Mask = &mask.String
	}
	if deletedAt.Valid {
		acc.DeletedAt = &deletedAt.Time
	}

	return &acc, nil
}

// CreateBatch stores the accounts reported by Plaid Link for a new item
func (r *AccountRepository) CreateBatch(ctx context.Context, params []account.CreateParams) ([]*account.Account, error) {
	query := `
		INSERT INTO accounts (id, user_id, item_id, plaid_account_id, name, account_type, subtype, mask)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (plaid_account_id) DO UPDATE SET
			name = EXCLUDED.name,
			account_type = EXCLUDED.account_type,
			subtype = EXCLUDED.subtype,
			mask = EXCLUDED.mask,
			deleted_at = NULL,
			updated_at = NOW()
		RETURNING ` + accountColumns

	accounts := make([]*account.Account, 0, len(params))
	for _, p := range params {
		acc, err := scanAccount(r.db.QueryRowContext(
			ctx, query,
			uuid.NewString(), p.UserID, p.ItemID, p.PlaidAccountID, p.Name,
			p.AccountType, p.Subtype, p.Mask,
		).Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to create account %s: %w", p.PlaidAccountID, err)
		}
		accounts = append(accounts, acc)
	}

	return accounts, nil
}

// GetByID retrieves an account by its id
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// ListByUserID retrieves the user's non-deleted accounts
func (r *AccountRepository) ListByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// ListByItemID retrieves all accounts under an item, including
// soft-deleted ones so sync can tell deleted from unknown.
func (r *AccountRepository) ListByItemID(ctx context.Context, itemID string) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE item_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for item: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func collectAccounts(rows *sql.Rows) ([]*account.Account, error) {
	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// SoftDeleteByItemID archives every live account under the item and
// returns the affected account ids
func (r *AccountRepository) SoftDeleteByItemID(ctx context.Context, itemID string, deletedAt time.Time) ([]string, error) {
	query := `
		UPDATE accounts
		SET deleted_at = $2, updated_at = NOW()
		WHERE item_id = $1 AND deleted_at IS NULL
		RETURNING id
	`

	rows, err := r.db.QueryContext(ctx, query, itemID, deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to soft delete accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account ids: %w", err)
	}

	return ids, nil
}
