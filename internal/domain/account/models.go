package account

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrForbidden       = errors.New("access forbidden")
)

// Account represents a bank account under a linked Plaid item
type Account struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	ItemID         string     `json:"itemId"`
	PlaidAccountID string     `json:"plaidAccountId"`
	Name           string     `json:"name"`
	AccountType    *string    `json:"accountType,omitempty"`
	Subtype        *string    `json:"subtype,omitempty"`
	Mask           *string    `json:"mask,omitempty"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CreateParams contains parameters for storing an account reported by Plaid Link
type CreateParams struct {
	UserID         string
	ItemID         string
	PlaidAccountID string
	Name           string
	AccountType    *string
	Subtype        *string
	Mask           *string
}
