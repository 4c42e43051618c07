package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jdgtl/project-october/internal/domain/photo"
	"github.com/jdgtl/project-october/internal/domain/transaction"
	"github.com/jdgtl/project-october/internal/shared/middleware"
)

type PhotoHandler struct {
	photoRepo       photo.Repository
	transactionRepo transaction.Repository
}

func NewPhotoHandler(photoRepo photo.Repository, transactionRepo transaction.Repository) *PhotoHandler {
	return &PhotoHandler{photoRepo: photoRepo, transactionRepo: transactionRepo}
}

type CreatePhotoRequest struct {
	PhotoURL     string  `json:"photoUrl"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
	DisplayOrder int     `json:"displayOrder"`
}

// HandleTransactionPhotos handles POST (attach) and GET (list) on
// /api/transactions/{id}/photos. Upload happens elsewhere; this records
// the resulting URLs against a transaction the caller owns.
func (h *PhotoHandler) HandleTransactionPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	transactionID := r.PathValue("id")
	if transactionID == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	tx, err := h.transactionRepo.GetByID(r.Context(), transactionID)
	if err != nil || tx == nil || tx.UserID != userID {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleAttachPhoto(w, r, userID, transactionID)
	case http.MethodGet:
		photos, err := h.photoRepo.ListByTransactionID(r.Context(), transactionID)
		if err != nil {
			log.Printf("Error listing photos for transaction %s: %v", transactionID, err)
			http.Error(w, "Failed to list photos", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(photos)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PhotoHandler) handleAttachPhoto(w http.ResponseWriter, r *http.Request, userID, transactionID string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req CreatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.PhotoURL == "" {
		http.Error(w, "photoUrl is required", http.StatusBadRequest)
		return
	}

	p, err := h.photoRepo.Create(r.Context(), photo.CreateParams{
		TransactionID: transactionID,
		UserID:        userID,
		PhotoURL:      req.PhotoURL,
		ThumbnailURL:  req.ThumbnailURL,
		DisplayOrder:  req.DisplayOrder,
	})
	if err != nil {
		log.Printf("Error attaching photo to transaction %s: %v", transactionID, err)
		http.Error(w, "Failed to attach photo", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// HandlePhotoByID handles DELETE on /api/photos/{id}
func (h *PhotoHandler) HandlePhotoByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	photoID := r.PathValue("id")
	if photoID == "" {
		http.Error(w, "Photo ID is required", http.StatusBadRequest)
		return
	}

	p, err := h.photoRepo.GetByID(r.Context(), photoID)
	if err != nil {
		if errors.Is(err, photo.ErrPhotoNotFound) {
			http.Error(w, "Photo not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting photo %s: %v", photoID, err)
		http.Error(w, "Failed to get photo", http.StatusInternalServerError)
		return
	}
	if p.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.photoRepo.Delete(r.Context(), photoID); err != nil {
		log.Printf("Error deleting photo %s: %v", photoID, err)
		http.Error(w, "Failed to delete photo", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
