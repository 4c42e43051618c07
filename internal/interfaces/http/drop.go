package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jdgtl/project-october/internal/domain/drop"
	"github.com/jdgtl/project-october/internal/domain/transaction"
	"github.com/jdgtl/project-october/internal/shared/middleware"
)

type DropHandler struct {
	dropService *drop.Service
	dropRepo    drop.Repository
}

func NewDropHandler(dropService *drop.Service, dropRepo drop.Repository) *DropHandler {
	return &DropHandler{dropService: dropService, dropRepo: dropRepo}
}

type CreateDropRequest struct {
	TransactionID string   `json:"transactionId"`
	Caption       *string  `json:"caption,omitempty"`
	ShowAmount    bool     `json:"showAmount"`
	ShowRange     bool     `json:"showRange"`
	ShowMerchant  bool     `json:"showMerchant"`
	ShowDate      bool     `json:"showDate"`
	ShowCategory  bool     `json:"showCategory"`
	IsPublic      bool     `json:"isPublic"`
	PhotoIDs      []string `json:"photoIds,omitempty"`
}

// HandleDrops handles POST (create) and GET (list own) on /api/drops
func (h *DropHandler) HandleDrops(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreateDrop(w, r, userID)
	case http.MethodGet:
		h.handleListMyDrops(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DropHandler) handleCreateDrop(w http.ResponseWriter, r *http.Request, userID string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req CreateDropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.TransactionID == "" {
		http.Error(w, "transactionId is required", http.StatusBadRequest)
		return
	}

	d, err := h.dropService.Create(r.Context(), drop.CreateParams{
		UserID:        userID,
		TransactionID: req.TransactionID,
		Caption:       req.Caption,
		ShowAmount:    req.ShowAmount,
		ShowRange:     req.ShowRange,
		ShowMerchant:  req.ShowMerchant,
		ShowDate:      req.ShowDate,
		ShowCategory:  req.ShowCategory,
		IsPublic:      req.IsPublic,
		PhotoIDs:      req.PhotoIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrTransactionNotFound):
			http.Error(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, drop.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			log.Printf("Error creating drop for user %s: %v", userID, err)
			http.Error(w, "Failed to create drop", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(d)
}

func (h *DropHandler) handleListMyDrops(w http.ResponseWriter, r *http.Request, userID string) {
	limit, offset := parsePagination(r, 20)

	drops, err := h.dropRepo.ListByUserID(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("Error listing drops for user %s: %v", userID, err)
		http.Error(w, "Failed to list drops", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(drops)
}

// HandleDropByID handles GET and DELETE on /api/drops/{id}
func (h *DropHandler) HandleDropByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	dropID := r.PathValue("id")
	if dropID == "" {
		http.Error(w, "Drop ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, err := h.dropService.Get(r.Context(), userID, dropID)
		if err != nil {
			if errors.Is(err, drop.ErrDropNotFound) {
				http.Error(w, "Drop not found", http.StatusNotFound)
				return
			}
			log.Printf("Error getting drop %s: %v", dropID, err)
			http.Error(w, "Failed to get drop", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(d)
	case http.MethodDelete:
		if err := h.dropService.Delete(r.Context(), userID, dropID); err != nil {
			switch {
			case errors.Is(err, drop.ErrDropNotFound):
				http.Error(w, "Drop not found", http.StatusNotFound)
			case errors.Is(err, drop.ErrForbidden):
				http.Error(w, "Forbidden", http.StatusForbidden)
			default:
				log.Printf("Error deleting drop %s: %v", dropID, err)
				http.Error(w, "Failed to delete drop", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleFeed returns the currents feed: public drops from users the
// caller follows, newest first
func (h *DropHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, offset := parsePagination(r, 20)

	entries, err := h.dropRepo.ListFeed(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("Error listing feed for user %s: %v", userID, err)
		http.Error(w, "Failed to load feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
