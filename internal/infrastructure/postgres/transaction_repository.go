package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jdgtl/project-october/internal/domain/transaction"
)

// TransactionRepository implements the transaction.Repository interface
// for PostgreSQL
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, account_id, plaid_transaction_id, amount, date, merchant_name, category, pending,
	payment_channel, logo_url, personal_finance_category_primary, personal_finance_category_detailed,
	personal_finance_category_confidence, personal_finance_category_icon_url, deleted_at, created_at, updated_at`

func scanTransaction(scan func(dest ...any) error) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	var merchantName, paymentChannel, logoURL sql.NullString
	var catPrimary, catDetailed, catConfidence, catIconURL sql.NullString
	var deletedAt sql.NullTime

	err := scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &tx.PlaidTransactionID,
		&tx.Amount, &tx.Date, &merchantName, pq.Array(&tx.Category), &tx.Pending,
		&paymentChannel, &logoURL, &catPrimary, &catDetailed,
		&catConfidence, &catIconURL, &deletedAt,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if merchantName.Valid {
		tx.MerchantName = &merchantName.String
	}
	if paymentChannel.Valid {
		tx.PaymentChannel = &paymentChannel.String
	}
	if logoURL.Valid {
		tx.LogoURL = &logoURL.String
	}
	if catPrimary.Valid {
		tx.CategoryPrimary = &catPrimary.String
	}
	if catDetailed.Valid {
		tx.CategoryDetailed = &catDetailed.String
	}
	if catConfidence.Valid {
		tx.CategoryConfidence = &catConfidence.String
	}
	if catIconURL.Valid {
		tx.CategoryIconURL = &catIconURL.String
	}
	if deletedAt.Valid {
		tx.DeletedAt = &deletedAt.Time
	}

	return &tx, nil
}

// GetByID retrieves a transaction by its id
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// ListByUserID returns the user's non-deleted transactions, newest first
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByAccountID returns an account's non-deleted transactions, newest first
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// CountByUserID counts the user's non-deleted transactions
func (r *TransactionRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND deleted_at IS NULL`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func collectTransactions(rows *sql.Rows) ([]*transaction.Transaction, error) {
	var transactions []*transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// UpsertBatch inserts or updates rows keyed on plaid_transaction_id
// inside a single database transaction. Re-applying the same batch
// converges to the same rows. Only rows flagged Resurrect (newly added
// records) clear deleted_at; a modified record leaves an archived row
// archived.
func (r *TransactionRepository) UpsertBatch(ctx context.Context, params []transaction.UpsertParams) error {
	if len(params) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer dbTx.Rollback()

	const queryBase = `
		INSERT INTO transactions (
			id, user_id, account_id, plaid_transaction_id, amount, date, merchant_name, category, pending,
			payment_channel, logo_url, personal_finance_category_primary, personal_finance_category_detailed,
			personal_finance_category_confidence, personal_finance_category_icon_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (plaid_transaction_id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			amount = EXCLUDED.amount,
			date = EXCLUDED.date,
			merchant_name = EXCLUDED.merchant_name,
			category = EXCLUDED.category,
			pending = EXCLUDED.pending,
			payment_channel = EXCLUDED.payment_channel,
			logo_url = EXCLUDED.logo_url,
			personal_finance_category_primary = EXCLUDED.personal_finance_category_primary,
			personal_finance_category_detailed = EXCLUDED.personal_finance_category_detailed,
			personal_finance_category_confidence = EXCLUDED.personal_finance_category_confidence,
			personal_finance_category_icon_url = EXCLUDED.personal_finance_category_icon_url,
			updated_at = NOW()
	`
	const queryResurrect = queryBase + `, deleted_at = NULL`

	stmt, err := dbTx.PrepareContext(ctx, queryBase)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	stmtResurrect, err := dbTx.PrepareContext(ctx, queryResurrect)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmtResurrect.Close()

	for _, p := range params {
		st := stmt
		if p.Resurrect {
			st = stmtResurrect
		}
		_, err := st.ExecContext(ctx,
			uuid.NewString(), p.UserID, p.AccountID, p.PlaidTransactionID,
			p.Amount, p.Date, p.MerchantName, pq.Array(p.Category), p.Pending,
			p.PaymentChannel, p.LogoURL, p.CategoryPrimary, p.CategoryDetailed,
			p.CategoryConfidence, p.CategoryIconURL,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert transaction %s: %w", p.PlaidTransactionID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	return nil
}

// SoftDeleteByPlaidIDs sets deleted_at for the given external ids.
// Rows already soft-deleted keep their original deleted_at, and unknown
// ids are ignored (Plaid can report removals we never stored).
func (r *TransactionRepository) SoftDeleteByPlaidIDs(ctx context.Context, userID string, plaidIDs []string, deletedAt time.Time) error {
	if len(plaidIDs) == 0 {
		return nil
	}

	query := `
		UPDATE transactions
		SET deleted_at = $3, updated_at = NOW()
		WHERE user_id = $1 AND plaid_transaction_id = ANY($2) AND deleted_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, userID, pq.Array(plaidIDs), deletedAt)
	if err != nil {
		return fmt.Errorf("failed to soft delete transactions: %w", err)
	}

	return nil
}

// SoftDeleteByAccountIDs archives every live transaction under the accounts
func (r *TransactionRepository) SoftDeleteByAccountIDs(ctx context.Context, accountIDs []string, deletedAt time.Time) error {
	if len(accountIDs) == 0 {
		return nil
	}

	query := `
		UPDATE transactions
		SET deleted_at = $2, updated_at = NOW()
		WHERE account_id = ANY($1) AND deleted_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, pq.Array(accountIDs), deletedAt)
	if err != nil {
		return fmt.Errorf("failed to soft delete transactions for accounts: %w", err)
	}

	return nil
}

// ListMissingEnrichment returns the user's transactions that have no
// personal-finance category yet
func (r *TransactionRepository) ListMissingEnrichment(ctx context.Context, userID string) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL AND personal_finance_category_primary IS NULL
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions missing enrichment: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// UpdateEnrichment applies backfilled category columns to one row
func (r *TransactionRepository) UpdateEnrichment(ctx context.Context, id string, e transaction.Enrichment) error {
	query := `
		UPDATE transactions
		SET personal_finance_category_primary = $2,
			personal_finance_category_detailed = $3,
			personal_finance_category_confidence = $4,
			personal_finance_category_icon_url = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, e.Primary, e.Detailed, e.Confidence, e.IconURL)
	if err != nil {
		return fmt.Errorf("failed to update enrichment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check enrichment update: %w", err)
	}
	if affected == 0 {
		return transaction.ErrTransactionNotFound
	}

	return nil
}

// DeleteByAccountIDs hard-deletes transactions under the accounts and
// returns the deleted ids; used only by the purge path of item removal
func (r *TransactionRepository) DeleteByAccountIDs(ctx context.Context, accountIDs []string) ([]string, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	query := `DELETE FROM transactions WHERE account_id = ANY($1) RETURNING id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to delete transactions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan transaction id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction ids: %w", err)
	}

	return ids, nil
}
