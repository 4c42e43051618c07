package main

import (
	"log"
	"net/http"

	httphandlers "github.com/jdgtl/project-october/internal/interfaces/http"
	"github.com/jdgtl/project-october/internal/shared/config"
	"github.com/jdgtl/project-october/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(http.HandlerFunc(h))
	}

	// Users
	mux.Handle("/api/users/me", protected(deps.UserHandler.HandleMe))
	mux.Handle("/api/users/{username}", protected(deps.UserHandler.HandleProfile))
	mux.Handle("/api/users/{id}/follow", protected(deps.FollowHandler.HandleFollow))
	mux.Handle("/api/users/{id}/follow-counts", protected(deps.FollowHandler.HandleCounts))
	mux.Handle("/api/users/{id}/followers", protected(deps.FollowHandler.HandleFollowers))
	mux.Handle("/api/users/{id}/following", protected(deps.FollowHandler.HandleFollowing))

	// Accounts and transactions
	mux.Handle("/api/accounts", protected(deps.AccountHandler.HandleListAccounts))
	mux.Handle("/api/transactions", protected(deps.TransactionHandler.HandleListTransactions))
	mux.Handle("/api/transactions/backfill-categories", protected(deps.TransactionHandler.HandleBackfillCategories))
	mux.Handle("/api/transactions/{id}", protected(deps.TransactionHandler.HandleGetTransaction))
	mux.Handle("/api/transactions/{id}/photos", protected(deps.PhotoHandler.HandleTransactionPhotos))
	mux.Handle("/api/photos/{id}", protected(deps.PhotoHandler.HandlePhotoByID))

	// Plaid link and sync
	mux.Handle("/api/plaid/link-token", protected(deps.PlaidHandler.HandleCreateLinkToken))
	mux.Handle("/api/plaid/exchange", protected(deps.PlaidHandler.HandleExchange))
	mux.Handle("/api/plaid/items", protected(deps.PlaidHandler.HandleListItems))
	mux.Handle("/api/plaid/items/{id}", protected(deps.PlaidHandler.HandleRemoveItem))
	mux.Handle("/api/plaid/items/{plaidItemId}/sync", protected(deps.PlaidHandler.HandleSync))

	// Drops and feed
	mux.Handle("/api/drops", protected(deps.DropHandler.HandleDrops))
	mux.Handle("/api/drops/{id}", protected(deps.DropHandler.HandleDropByID))
	mux.Handle("/api/feed", protected(deps.DropHandler.HandleFeed))

	// Notifications
	mux.Handle("/api/notifications/register-device", protected(deps.NotificationHandler.HandleRegisterDevice))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
