package notification

import "context"

// Messenger abstracts the push delivery backend (FCM in production)
type Messenger interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
