package drop

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrDropNotFound = errors.New("drop not found")
	ErrForbidden    = errors.New("access forbidden")
)

// Drop is a transaction the user chose to share publicly. The Show*
// toggles control which transaction fields are visible to viewers.
type Drop struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId"`
	Caption       *string   `json:"caption,omitempty"`
	ShowAmount    bool      `json:"showAmount"`
	ShowRange     bool      `json:"showRange"`
	ShowMerchant  bool      `json:"showMerchant"`
	ShowDate      bool      `json:"showDate"`
	ShowCategory  bool      `json:"showCategory"`
	IsPublic      bool      `json:"isPublic"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateParams contains parameters for publishing a drop
type CreateParams struct {
	UserID        string
	TransactionID string
	Caption       *string
	ShowAmount    bool
	ShowRange     bool
	ShowMerchant  bool
	ShowDate      bool
	ShowCategory  bool
	IsPublic      bool
	PhotoIDs      []string
}

// FeedEntry is one drop in the currents feed, joined with the shared
// transaction and its author. Fields hidden by the drop's toggles are
// left nil/zero by the repository.
type FeedEntry struct {
	Drop           Drop             `json:"drop"`
	AuthorID       string           `json:"authorId"`
	AuthorUsername *string          `json:"authorUsername,omitempty"`
	AuthorPhotoURL *string          `json:"authorPhotoUrl,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	MerchantName   *string          `json:"merchantName,omitempty"`
	Date           *time.Time       `json:"date,omitempty"`
	Category       []string         `json:"category,omitempty"`
	PhotoURLs      []string         `json:"photoUrls,omitempty"`
}
