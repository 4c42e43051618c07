package plaidsync

import (
	"fmt"

	"github.com/jdgtl/project-october/internal/domain/account"
	"github.com/jdgtl/project-october/internal/domain/transaction"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
)

// RejectedRecord is a feed record that could not be mapped for upsert.
// Rejections are reported on the sync result instead of being written
// with missing data.
type RejectedRecord struct {
	PlaidTransactionID string `json:"plaidTransactionId"`
	PlaidAccountID     string `json:"plaidAccountId"`
	Reason             string `json:"reason"`
}

// buildAccountIndex maps plaid_account_id to the local account id for
// every non-deleted account of the item.
func buildAccountIndex(accounts []*account.Account) map[string]string {
	index := make(map[string]string, len(accounts))
	for _, a := range accounts {
		if a.DeletedAt != nil {
			continue
		}
		index[a.PlaidAccountID] = a.ID
	}
	return index
}

// mapTransaction converts one feed record into upsert params.
// Returns a rejection when the record has no external id, no resolvable
// local account, or an unparseable date.
func mapTransaction(userID string, tx *plaid.Transaction, accountIndex map[string]string) (transaction.UpsertParams, *RejectedRecord) {
	if tx.TransactionID == "" {
		return transaction.UpsertParams{}, &RejectedRecord{
			PlaidAccountID: tx.AccountID,
			Reason:         "missing transaction id",
		}
	}

	accountID, ok := accountIndex[tx.AccountID]
	if !ok {
		return transaction.UpsertParams{}, &RejectedRecord{
			PlaidTransactionID: tx.TransactionID,
			PlaidAccountID:     tx.AccountID,
			Reason:             "no matching local account",
		}
	}

	date, err := tx.GetDate()
	if err != nil {
		return transaction.UpsertParams{}, &RejectedRecord{
			PlaidTransactionID: tx.TransactionID,
			PlaidAccountID:     tx.AccountID,
			Reason:             fmt.Sprintf("invalid date: %v", err),
		}
	}

	params := transaction.UpsertParams{
		UserID:             userID,
		AccountID:          accountID,
		PlaidTransactionID: tx.TransactionID,
		Amount:             tx.Amount.Abs(), // direction is discarded at ingestion
		Date:               date,
		Pending:            tx.Pending,
		Category:           tx.Category,
	}

	merchant := tx.MerchantName
	if merchant == "" {
		merchant = tx.Name
	}
	if merchant != "" {
		params.MerchantName = &merchant
	}
	if tx.PaymentChannel != "" {
		params.PaymentChannel = &tx.PaymentChannel
	}
	if tx.LogoURL != "" {
		params.LogoURL = &tx.LogoURL
	}

	// Enriched category wins over the raw category list
	if pfc := tx.PersonalFinanceCategory; pfc != nil && pfc.Primary != "" {
		params.Category = []string{transaction.FormatPrimaryCategory(pfc.Primary)}
		params.CategoryPrimary = &pfc.Primary
		if pfc.Detailed != "" {
			params.CategoryDetailed = &pfc.Detailed
		}
		if pfc.ConfidenceLevel != "" {
			params.CategoryConfidence = &pfc.ConfidenceLevel
		}
	}
	if tx.PersonalFinanceCategoryIconURL != "" {
		params.CategoryIconURL = &tx.PersonalFinanceCategoryIconURL
	}

	return params, nil
}
