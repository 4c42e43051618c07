package account

import (
	"context"
	"time"
)

// Repository defines the interface for account data access
type Repository interface {
	CreateBatch(ctx context.Context, params []CreateParams) ([]*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	ListByUserID(ctx context.Context, userID string) ([]*Account, error)
	ListByItemID(ctx context.Context, itemID string) ([]*Account, error)
	// SoftDeleteByItemID marks every account under the item as deleted
	// and returns the affected account ids.
	SoftDeleteByItemID(ctx context.Context, itemID string, deletedAt time.Time) ([]string, error)
}
