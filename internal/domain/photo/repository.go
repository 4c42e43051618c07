package photo

import "context"

// Repository defines the interface for transaction-photo data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Photo, error)
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListByTransactionID(ctx context.Context, transactionID string) ([]*Photo, error)
	Delete(ctx context.Context, id string) error
}
