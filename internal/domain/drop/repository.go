package drop

import "context"

// Repository defines the interface for drop data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Drop, error)
	GetByID(ctx context.Context, id string) (*Drop, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Drop, error)
	Delete(ctx context.Context, id string) error
	DeleteByTransactionIDs(ctx context.Context, transactionIDs []string) error
	// LinkPhotos attaches previously uploaded photos to a drop in display order.
	LinkPhotos(ctx context.Context, dropID string, photoIDs []string) error
	// ListFeed returns public drops from users the viewer follows,
	// newest first, with hidden fields already blanked.
	ListFeed(ctx context.Context, viewerID string, limit, offset int) ([]*FeedEntry, error)
}
