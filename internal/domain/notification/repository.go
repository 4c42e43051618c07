package notification

import "context"

// Repository defines the interface for device-token data access
type Repository interface {
	// RegisterDevice upserts a token for a user, reactivating it if needed.
	RegisterDevice(ctx context.Context, userID, token, platform string) (*DeviceToken, error)
	ListActiveTokensByUserIDs(ctx context.Context, userIDs []string) ([]string, error)
	DeactivateToken(ctx context.Context, token string) error
}
