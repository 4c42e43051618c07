package plaidsync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jdgtl/project-october/internal/domain/account"
	"github.com/jdgtl/project-october/internal/domain/item"
	"github.com/jdgtl/project-october/internal/domain/transaction"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
)

// Stage identifies how far a sync invocation got before returning.
// Stages run strictly in order: fetch, upsert, soft-delete, cursor.
// The cursor only moves once everything before it succeeded, so a
// result with Stage < StageCursor means the next invocation re-fetches
// from the previous cursor.
type Stage string

const (
	StageNone       Stage = ""
	StageFetched    Stage = "fetched"
	StageUpserted   Stage = "upserted"
	StageSoftDelete Stage = "soft_deleted"
	StageCursor     Stage = "cursor_persisted"
)

// Result summarizes one sync invocation for an item
type Result struct {
	ItemID      string           `json:"itemId"`
	Added       int              `json:"added"`
	Modified    int              `json:"modified"`
	Removed     int              `json:"removed"`
	TotalSynced int              `json:"totalSynced"`
	Rejected    []RejectedRecord `json:"rejected,omitempty"`
	Stage       Stage            `json:"stage"`
}

// TransactionSyncService reconciles Plaid's incremental transaction feed
// into local storage: it pages the feed to exhaustion, upserts added and
// modified records keyed on the external transaction id, soft-deletes
// removed records and persists the continuation cursor last.
type TransactionSyncService struct {
	client          plaid.ClientInterface
	itemRepo        item.Repository
	accountRepo     account.Repository
	transactionRepo transaction.Repository
	locks           *itemLocks
	now             func() time.Time
}

// NewTransactionSyncService creates a new transaction sync service
func NewTransactionSyncService(
	client plaid.ClientInterface,
	itemRepo item.Repository,
	accountRepo account.Repository,
	transactionRepo transaction.Repository,
) *TransactionSyncService {
	return &TransactionSyncService{
		client:          client,
		itemRepo:        itemRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		locks:           newItemLocks(),
		now:             time.Now,
	}
}

// SyncItemTransactions runs one full sync pass for a bank connection,
// identified by Plaid's item id, on behalf of its owner.
//
// Failure semantics: any feed error aborts before any write; any write
// error aborts without rolling back earlier writes. Both are safe to
// retry because the cursor only advances after complete success and the
// upsert and soft-delete are idempotent.
func (s *TransactionSyncService) SyncItemTransactions(ctx context.Context, userID, plaidItemID string) (*Result, error) {
	if !s.locks.TryAcquire(plaidItemID) {
		return nil, ErrSyncInProgress
	}
	defer s.locks.Release(plaidItemID)

	it, err := s.itemRepo.GetByPlaidItemID(ctx, userID, plaidItemID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListByItemID(ctx, it.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for item %s: %w", it.ID, err)
	}
	accountIndex := buildAccountIndex(accounts)

	result := &Result{ItemID: plaidItemID}

	// Page the feed to exhaustion, accumulating across pages. The final
	// cursor is only persisted after everything is applied.
	var (
		added    []plaid.Transaction
		modified []plaid.Transaction
		removed  []plaid.RemovedTransaction
		cursor   string
		hasMore  = true
	)
	if it.TransactionsCursor != nil {
		cursor = *it.TransactionsCursor
	}

	for hasMore {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sync cancelled for item %s: %w", plaidItemID, err)
		}

		page, err := s.client.SyncTransactions(ctx, it.AccessToken, cursor)
		if err != nil {
			return result, &UpstreamError{Err: err}
		}

		added = append(added, page.Added...)
		modified = append(modified, page.Modified...)
		removed = append(removed, page.Removed...)
		cursor = page.NextCursor
		hasMore = page.HasMore

		log.Printf("Sync page for item %s: added=%d modified=%d removed=%d has_more=%v",
			plaidItemID, len(page.Added), len(page.Modified), len(page.Removed), page.HasMore)
	}

	result.Stage = StageFetched
	result.Added = len(added)
	result.Modified = len(modified)
	result.Removed = len(removed)

	// Map added+modified; rejections are reported, not written
	upserts := make([]transaction.UpsertParams, 0, len(added)+len(modified))
	for i := range added {
		s.appendMapped(userID, &added[i], accountIndex, true, &upserts, result)
	}
	for i := range modified {
		s.appendMapped(userID, &modified[i], accountIndex, false, &upserts, result)
	}

	if len(upserts) > 0 {
		if err := s.transactionRepo.UpsertBatch(ctx, upserts); err != nil {
			return result, &PersistenceError{Op: "upsert", Err: err}
		}
	}
	result.Stage = StageUpserted
	result.TotalSynced = len(upserts)

	if len(removed) > 0 {
		plaidIDs := make([]string, len(removed))
		for i, r := range removed {
			plaidIDs[i] = r.TransactionID
		}
		if err := s.transactionRepo.SoftDeleteByPlaidIDs(ctx, userID, plaidIDs, s.now()); err != nil {
			return result, &PersistenceError{Op: "soft_delete", Err: err}
		}
	}
	result.Stage = StageSoftDelete

	if err := s.itemRepo.UpdateCursor(ctx, it.ID, cursor); err != nil {
		return result, &PersistenceError{Op: "cursor", Err: err}
	}
	result.Stage = StageCursor

	log.Printf("Sync completed for item %s: added=%d modified=%d removed=%d synced=%d rejected=%d",
		plaidItemID, result.Added, result.Modified, result.Removed, result.TotalSynced, len(result.Rejected))

	return result, nil
}

func (s *TransactionSyncService) appendMapped(
	userID string,
	tx *plaid.Transaction,
	accountIndex map[string]string,
	added bool,
	upserts *[]transaction.UpsertParams,
	result *Result,
) {
	params, rejected := mapTransaction(userID, tx, accountIndex)
	if rejected != nil {
		log.Printf("Rejecting transaction %q (account %q): %s",
			rejected.PlaidTransactionID, rejected.PlaidAccountID, rejected.Reason)
		result.Rejected = append(result.Rejected, *rejected)
		return
	}
	params.Resurrect = added
	*upserts = append(*upserts, params)
}
