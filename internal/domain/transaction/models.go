package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrForbidden           = errors.New("access forbidden")
)

// Transaction is the locally persisted form of a Plaid transaction.
// Amount is always a non-negative magnitude; the sign reported by Plaid
// is discarded at ingestion. A removed transaction is never deleted,
// it only gets DeletedAt set.
type Transaction struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	AccountID          string          `json:"accountId"`
	PlaidTransactionID string          `json:"plaidTransactionId"`
	Amount             decimal.Decimal `json:"amount"`
	Date               time.Time       `json:"date"`
	MerchantName       *string         `json:"merchantName,omitempty"`
	Category           []string        `json:"category"`
	Pending            bool            `json:"pending"`
	PaymentChannel     *string         `json:"paymentChannel,omitempty"`
	LogoURL            *string         `json:"logoUrl,omitempty"`
	CategoryPrimary    *string         `json:"personalFinanceCategoryPrimary,omitempty"`
	CategoryDetailed   *string         `json:"personalFinanceCategoryDetailed,omitempty"`
	CategoryConfidence *string         `json:"personalFinanceCategoryConfidence,omitempty"`
	CategoryIconURL    *string         `json:"personalFinanceCategoryIconUrl,omitempty"`
	DeletedAt          *time.Time      `json:"deletedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// UpsertParams is the row shape written during sync, keyed on
// PlaidTransactionID with update-on-conflict semantics.
type UpsertParams struct {
	UserID             string
	AccountID          string
	PlaidTransactionID string
	Amount             decimal.Decimal
	Date               time.Time
	MerchantName       *string
	Category           []string
	Pending            bool
	PaymentChannel     *string
	LogoURL            *string
	CategoryPrimary    *string
	CategoryDetailed   *string
	CategoryConfidence *string
	CategoryIconURL    *string
	// Resurrect clears deleted_at on conflict. Set only for records the
	// feed reports as newly added; a modification to an archived row
	// must not unarchive it.
	Resurrect bool
}

// Enrichment holds the personal-finance category columns applied by the
// category backfill.
type Enrichment struct {
	Primary    *string
	Detailed   *string
	Confidence *string
	IconURL    *string
}
