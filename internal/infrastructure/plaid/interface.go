package plaid

import "context"

// ClientInterface defines the Plaid operations used by the application.
// Allows substituting a mock client for testing.
type ClientInterface interface {
	// CreateLinkToken starts a Plaid Link session for the given user.
	CreateLinkToken(ctx context.Context, clientUserID string) (string, error)

	// ExchangePublicToken trades a Link public token for a permanent
	// access token and the Plaid item id.
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error)

	// SyncTransactions fetches one page of the incremental transaction
	// feed. An empty cursor requests the first page of a full backfill.
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error)

	// GetTransactions fetches the full transaction history between two
	// dates (YYYY-MM-DD), used by the category backfill.
	GetTransactions(ctx context.Context, accessToken, startDate, endDate string) ([]Transaction, error)

	// RemoveItem invalidates the access token at Plaid.
	RemoveItem(ctx context.Context, accessToken string) error
}
