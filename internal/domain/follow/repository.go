package follow

import "context"

// Repository defines the interface for follow-relationship data access
type Repository interface {
	Create(ctx context.Context, followerID, followingID string) (*Follow, error)
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	// ListFollowerIDs returns the ids of users following the given user.
	ListFollowerIDs(ctx context.Context, userID string) ([]string, error)
	ListFollowingIDs(ctx context.Context, userID string) ([]string, error)
	Counts(ctx context.Context, userID string) (*Counts, error)
}
