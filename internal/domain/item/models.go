package item

import (
	"errors"
	"time"
)

// ErrItemNotFound is returned when a bank connection does not exist or
// does not belong to the requesting user.
var ErrItemNotFound = errors.New("plaid item not found")

// Item represents one bank connection established through Plaid Link.
// AccessToken is stored encrypted; repositories hand it back decrypted.
// TransactionsCursor is the resumable position in Plaid's incremental
// transaction feed; nil means the item has never been synced.
type Item struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	PlaidItemID        string    `json:"plaidItemId"`
	AccessToken        string    `json:"-"`
	InstitutionID      *string   `json:"institutionId,omitempty"`
	InstitutionName    *string   `json:"institutionName,omitempty"`
	TransactionsCursor *string   `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// CreateParams contains parameters for storing a newly linked item
type CreateParams struct {
	UserID          string
	PlaidItemID     string
	AccessToken     string
	InstitutionID   *string
	InstitutionName *string
}
