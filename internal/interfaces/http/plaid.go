package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jdgtl/project-october/internal/domain/item"
	"github.com/jdgtl/project-october/internal/domain/plaidsync"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
	"github.com/jdgtl/project-october/internal/shared/middleware"
)

type PlaidHandler struct {
	client      plaid.ClientInterface
	itemRepo    item.Repository
	itemService *plaidsync.ItemService
	syncService *plaidsync.TransactionSyncService
}

func NewPlaidHandler(
	client plaid.ClientInterface,
	itemRepo item.Repository,
	itemService *plaidsync.ItemService,
	syncService *plaidsync.TransactionSyncService,
) *PlaidHandler {
	return &PlaidHandler{
		client:      client,
		itemRepo:    itemRepo,
		itemService: itemService,
		syncService: syncService,
	}
}

type LinkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

type ExchangeRequest struct {
	PublicToken     string                    `json:"publicToken"`
	InstitutionID   *string                   `json:"institutionId,omitempty"`
	InstitutionName *string                   `json:"institutionName,omitempty"`
	Accounts        []plaidsync.LinkedAccount `json:"accounts"`
}

type SyncErrorResponse struct {
	Error  string            `json:"error"`
	Result *plaidsync.Result `json:"result,omitempty"`
}

// HandleCreateLinkToken starts a Plaid Link session for the caller
func (h *PlaidHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	linkToken, err := h.client.CreateLinkToken(r.Context(), userID)
	if err != nil {
		log.Printf("Error creating link token for user %s: %v", userID, err)
		http.Error(w, "Failed to create link token", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LinkTokenResponse{LinkToken: linkToken})
}

// HandleExchange exchanges a public token and stores the linked item
func (h *PlaidHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.PublicToken == "" {
		http.Error(w, "publicToken is required", http.StatusBadRequest)
		return
	}

	it, err := h.itemService.Link(r.Context(), userID, req.PublicToken, req.InstitutionID, req.InstitutionName, req.Accounts)
	if err != nil {
		var upstream *plaidsync.UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("Error exchanging public token for user %s: %v", userID, err)
			http.Error(w, "Failed to exchange public token", http.StatusBadGateway)
			return
		}
		log.Printf("Error linking item for user %s: %v", userID, err)
		http.Error(w, "Failed to link item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(it)
}

// HandleListItems returns the caller's linked bank connections
func (h *PlaidHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.itemRepo.ListByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing items for user %s: %v", userID, err)
		http.Error(w, "Failed to list items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// HandleSync runs one full transaction sync pass for an item. The item
// is identified by Plaid's item id. Returns 409 when a sync for the
// same item is already running.
func (h *PlaidHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	plaidItemID := r.PathValue("plaidItemId")
	if plaidItemID == "" {
		http.Error(w, "Item ID is required", http.StatusBadRequest)
		return
	}

	result, err := h.syncService.SyncItemTransactions(r.Context(), userID, plaidItemID)
	if err != nil {
		switch {
		case errors.Is(err, plaidsync.ErrSyncInProgress):
			http.Error(w, "Sync already in progress for this item", http.StatusConflict)
		case errors.Is(err, item.ErrItemNotFound):
			http.Error(w, "Item not found", http.StatusNotFound)
		default:
			status := http.StatusInternalServerError
			var upstream *plaidsync.UpstreamError
			if errors.As(err, &upstream) {
				status = http.StatusBadGateway
			}
			log.Printf("Sync failed for item %s (user %s): %v", plaidItemID, userID, err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(SyncErrorResponse{Error: "Sync failed", Result: result})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleRemoveItem disconnects a bank connection. mode=archive (default)
// keeps synced data soft-deleted; mode=purge hard-deletes it.
func (h *PlaidHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemID := r.PathValue("id")
	if itemID == "" {
		http.Error(w, "Item ID is required", http.StatusBadRequest)
		return
	}

	mode := plaidsync.RemovalArchive
	switch r.URL.Query().Get("mode") {
	case "", "archive":
	case "purge":
		mode = plaidsync.RemovalPurge
	default:
		http.Error(w, "mode must be archive or purge", http.StatusBadRequest)
		return
	}

	if err := h.itemService.Remove(r.Context(), userID, itemID, mode); err != nil {
		if errors.Is(err, item.ErrItemNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		log.Printf("Error removing item %s (user %s): %v", itemID, userID, err)
		http.Error(w, "Failed to remove item", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
