package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jdgtl/project-october/internal/domain/item"
	"github.com/jdgtl/project-october/internal/domain/plaidsync"
)

// ItemSyncJob runs one transaction sync pass for a single bank
// connection.
type ItemSyncJob struct {
	userID      string
	plaidItemID string
	syncService *plaidsync.TransactionSyncService
}

// NewItemSyncJob creates a sync job for one item
func NewItemSyncJob(userID, plaidItemID string, syncService *plaidsync.TransactionSyncService) *ItemSyncJob {
	return &ItemSyncJob{
		userID:      userID,
		plaidItemID: plaidItemID,
		syncService: syncService,
	}
}

// Execute runs the sync. An item already being synced elsewhere is
// skipped, not retried; the next scheduled run picks it up.
func (j *ItemSyncJob) Execute(ctx context.Context) error {
	log.Printf("Starting scheduled sync for item %s (user %s)", j.plaidItemID, j.userID)

	result, err := j.syncService.SyncItemTransactions(ctx, j.userID, j.plaidItemID)
	if err != nil {
		if errors.Is(err, plaidsync.ErrSyncInProgress) {
			log.Printf("Scheduled sync skipped for item %s: already in progress", j.plaidItemID)
			return nil
		}
		log.Printf("Scheduled sync failed for item %s: %v", j.plaidItemID, err)
		return fmt.Errorf("sync failed: %w", err)
	}

	log.Printf("Scheduled sync for item %s completed: added=%d modified=%d removed=%d rejected=%d",
		j.plaidItemID, result.Added, result.Modified, result.Removed, len(result.Rejected))

	return nil
}

// UserID returns the owner of the item being synced
func (j *ItemSyncJob) UserID() string {
	return j.userID
}

// Description returns a human-readable description of the job
func (j *ItemSyncJob) Description() string {
	return fmt.Sprintf("Transaction sync for item %s", j.plaidItemID)
}

// NewItemJobProvider returns a job provider that creates one sync job
// per stored item.
func NewItemJobProvider(itemRepo item.Repository, syncService *plaidsync.TransactionSyncService) func(context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		items, err := itemRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list items: %w", err)
		}

		jobs := make([]Job, 0, len(items))
		for _, it := range items {
			jobs = append(jobs, NewItemSyncJob(it.UserID, it.PlaidItemID, syncService))
		}
		return jobs, nil
	}
}
