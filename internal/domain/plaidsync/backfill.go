package plaidsync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jdgtl/project-october/internal/domain/item"
	"github.com/jdgtl/project-october/internal/domain/transaction"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
)

// BackfillResult summarizes a category backfill run
type BackfillResult struct {
	TotalCandidates int `json:"totalCandidates"`
	Updated         int `json:"updated"`
}

// BackfillService fills in personal-finance categories for transactions
// synced before enrichment was requested. Unlike the incremental sync it
// fetches the full history and tolerates per-row failures.
type BackfillService struct {
	client          plaid.ClientInterface
	itemRepo        item.Repository
	transactionRepo transaction.Repository
	startDate       string
	now             func() time.Time
}

// NewBackfillService creates a new backfill service. startDate bounds
// the history fetch (YYYY-MM-DD); empty means 2020-01-01.
func NewBackfillService(
	client plaid.ClientInterface,
	itemRepo item.Repository,
	transactionRepo transaction.Repository,
	startDate string,
) *BackfillService {
	if startDate == "" {
		startDate = "2020-01-01"
	}
	return &BackfillService{
		client:          client,
		itemRepo:        itemRepo,
		transactionRepo: transactionRepo,
		startDate:       startDate,
		now:             time.Now,
	}
}

// BackfillCategories enriches the user's transactions that are missing
// personal-finance category data. Per-row update failures are counted
// and skipped; the run only fails on fetch errors.
func (s *BackfillService) BackfillCategories(ctx context.Context, userID string) (*BackfillResult, error) {
	candidates, err := s.transactionRepo.ListMissingEnrichment(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions missing enrichment: %w", err)
	}

	result := &BackfillResult{TotalCandidates: len(candidates)}
	if len(candidates) == 0 {
		return result, nil
	}

	items, err := s.itemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if len(items) == 0 {
		return result, nil
	}

	// One full-history fetch per connected item, merged into a single
	// id -> enrichment lookup
	endDate := s.now().Format("2006-01-02")
	enrichments := make(map[string]transaction.Enrichment)
	for _, it := range items {
		txs, err := s.client.GetTransactions(ctx, it.AccessToken, s.startDate, endDate)
		if err != nil {
			return result, &UpstreamError{Err: err}
		}
		for i := range txs {
			tx := &txs[i]
			pfc := tx.PersonalFinanceCategory
			if pfc == nil || pfc.Primary == "" {
				continue
			}
			e := transaction.Enrichment{Primary: &pfc.Primary}
			if pfc.Detailed != "" {
				e.Detailed = &pfc.Detailed
			}
			if pfc.ConfidenceLevel != "" {
				e.Confidence = &pfc.ConfidenceLevel
			}
			if tx.PersonalFinanceCategoryIconURL != "" {
				e.IconURL = &tx.PersonalFinanceCategoryIconURL
			}
			enrichments[tx.TransactionID] = e
		}
	}

	log.Printf("Backfill for user %s: %d candidates, %d enrichments fetched",
		userID, len(candidates), len(enrichments))

	for _, candidate := range candidates {
		e, ok := enrichments[candidate.PlaidTransactionID]
		if !ok {
			continue
		}
		if err := s.transactionRepo.UpdateEnrichment(ctx, candidate.ID, e); err != nil {
			log.Printf("Failed to backfill transaction %s: %v", candidate.ID, err)
			continue
		}
		result.Updated++
	}

	log.Printf("Backfill completed for user %s: updated=%d/%d", userID, result.Updated, result.TotalCandidates)
	return result, nil
}
