package transaction

import (
	"context"
	"time"
)

// Repository defines the interface for transaction data access
type Repository interface {
	GetByID(ctx context.Context, id string) (*Transaction, error)
	// ListByUserID returns the user's non-deleted transactions, newest first.
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Transaction, error)
	ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*Transaction, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	// UpsertBatch inserts or updates rows keyed on plaid_transaction_id.
	// Re-applying the same batch converges to the same rows.
	UpsertBatch(ctx context.Context, params []UpsertParams) error
	// SoftDeleteByPlaidIDs sets deleted_at for the given external ids.
	// Rows already soft-deleted keep their original deleted_at.
	SoftDeleteByPlaidIDs(ctx context.Context, userID string, plaidIDs []string, deletedAt time.Time) error
	// SoftDeleteByAccountIDs archives every transaction under the accounts.
	SoftDeleteByAccountIDs(ctx context.Context, accountIDs []string, deletedAt time.Time) error
	// ListMissingEnrichment returns the user's transactions that have no
	// personal-finance category yet.
	ListMissingEnrichment(ctx context.Context, userID string) ([]*Transaction, error)
	// UpdateEnrichment applies backfilled category columns to one row.
	UpdateEnrichment(ctx context.Context, id string, e Enrichment) error
	// DeleteByAccountIDs hard-deletes transactions; used only by the
	// purge path of item removal.
	DeleteByAccountIDs(ctx context.Context, accountIDs []string) ([]string, error)
}
