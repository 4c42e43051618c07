package plaidsync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jdgtl/project-october/internal/domain/account"
	"github.com/jdgtl/project-october/internal/domain/drop"
	"github.com/jdgtl/project-october/internal/domain/item"
	"github.com/jdgtl/project-october/internal/domain/transaction"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
)

// LinkedAccount describes one account reported by Plaid Link metadata
type LinkedAccount struct {
	PlaidAccountID string  `json:"id"`
	Name           string  `json:"name"`
	AccountType    *string `json:"type,omitempty"`
	Subtype        *string `json:"subtype,omitempty"`
	Mask           *string `json:"mask,omitempty"`
}

// RemovalMode selects what happens to synced data when an item is removed
type RemovalMode string

const (
	// RemovalArchive soft-deletes accounts and transactions, keeping
	// them (and any drops) readable.
	RemovalArchive RemovalMode = "archive"
	// RemovalPurge hard-deletes transactions and their drops.
	RemovalPurge RemovalMode = "purge"
)

// ItemService manages the lifecycle of bank connections: exchanging Link
// tokens for stored items and removing items with their synced data.
type ItemService struct {
	client          plaid.ClientInterface
	itemRepo        item.Repository
	accountRepo     account.Repository
	transactionRepo transaction.Repository
	dropRepo        drop.Repository
	now             func() time.Time
}

// NewItemService creates a new item lifecycle service
func NewItemService(
	client plaid.ClientInterface,
	itemRepo item.Repository,
	accountRepo account.Repository,
	transactionRepo transaction.Repository,
	dropRepo drop.Repository,
) *ItemService {
	return &ItemService{
		client:          client,
		itemRepo:        itemRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		dropRepo:        dropRepo,
		now:             time.Now,
	}
}

// Link exchanges a public token and stores the resulting item together
// with the accounts reported by Link metadata.
func (s *ItemService) Link(
	ctx context.Context,
	userID, publicToken string,
	institutionID, institutionName *string,
	accounts []LinkedAccount,
) (*item.Item, error) {
	exchange, err := s.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	it, err := s.itemRepo.Create(ctx, item.CreateParams{
		UserID:          userID,
		PlaidItemID:     exchange.ItemID,
		AccessToken:     exchange.AccessToken,
		InstitutionID:   institutionID,
		InstitutionName: institutionName,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "create_item", Err: err}
	}

	if len(accounts) > 0 {
		params := make([]account.CreateParams, len(accounts))
		for i, a := range accounts {
			params[i] = account.CreateParams{
				UserID:         userID,
				ItemID:         it.ID,
				PlaidAccountID: a.PlaidAccountID,
				Name:           a.Name,
				AccountType:    a.AccountType,
				Subtype:        a.Subtype,
				Mask:           a.Mask,
			}
		}
		if _, err := s.accountRepo.CreateBatch(ctx, params); err != nil {
			return nil, &PersistenceError{Op: "create_accounts", Err: err}
		}
	}

	log.Printf("Linked item %s for user %s with %d accounts", exchange.ItemID, userID, len(accounts))
	return it, nil
}

// Remove disconnects a bank connection. Archive mode soft-deletes the
// item's accounts and transactions; purge mode hard-deletes transactions
// and the drops built on them. Either way the item row and its access
// token are deleted and the token is invalidated at Plaid (best effort).
func (s *ItemService) Remove(ctx context.Context, userID, itemID string, mode RemovalMode) error {
	it, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if it == nil || it.UserID != userID {
		return item.ErrItemNotFound
	}

	switch mode {
	case RemovalArchive, "":
		now := s.now()
		accountIDs, err := s.accountRepo.SoftDeleteByItemID(ctx, it.ID, now)
		if err != nil {
			return &PersistenceError{Op: "archive_accounts", Err: err}
		}
		if len(accountIDs) > 0 {
			if err := s.transactionRepo.SoftDeleteByAccountIDs(ctx, accountIDs, now); err != nil {
				return &PersistenceError{Op: "archive_transactions", Err: err}
			}
		}

	case RemovalPurge:
		accounts, err := s.accountRepo.ListByItemID(ctx, it.ID)
		if err != nil {
			return &PersistenceError{Op: "list_accounts", Err: err}
		}
		accountIDs := make([]string, len(accounts))
		for i, a := range accounts {
			accountIDs[i] = a.ID
		}
		if len(accountIDs) > 0 {
			transactionIDs, err := s.transactionRepo.DeleteByAccountIDs(ctx, accountIDs)
			if err != nil {
				return &PersistenceError{Op: "purge_transactions", Err: err}
			}
			if len(transactionIDs) > 0 {
				if err := s.dropRepo.DeleteByTransactionIDs(ctx, transactionIDs); err != nil {
					return &PersistenceError{Op: "purge_drops", Err: err}
				}
			}
		}

	default:
		return fmt.Errorf("unknown removal mode %q", mode)
	}

	if err := s.client.RemoveItem(ctx, it.AccessToken); err != nil {
		// The local data is already handled; an unreachable Plaid item
		// just leaves a dangling token on their side
		log.Printf("Failed to remove item %s at Plaid: %v", it.PlaidItemID, err)
	}

	if err := s.itemRepo.Delete(ctx, it.ID); err != nil {
		return &PersistenceError{Op: "delete_item", Err: err}
	}

	log.Printf("Removed item %s for user %s (mode=%s)", it.PlaidItemID, userID, mode)
	return nil
}
