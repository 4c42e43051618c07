package item

import "context"

// Repository defines the interface for Plaid item data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	// GetByPlaidItemID returns the item identified by Plaid's own item id,
	// scoped to the owning user. Returns ErrItemNotFound when absent.
	GetByPlaidItemID(ctx context.Context, userID, plaidItemID string) (*Item, error)
	ListByUserID(ctx context.Context, userID string) ([]*Item, error)
	// ListAll returns every stored item; used by the scheduled sync.
	ListAll(ctx context.Context) ([]*Item, error)
	// UpdateCursor persists the transactions cursor after a fully
	// successful sync pass.
	UpdateCursor(ctx context.Context, id string, cursor string) error
	Delete(ctx context.Context, id string) error
}
