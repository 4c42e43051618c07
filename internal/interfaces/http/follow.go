package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jdgtl/project-october/internal/domain/follow"
	"github.com/jdgtl/project-october/internal/domain/user"
	"github.com/jdgtl/project-october/internal/shared/middleware"
)

type FollowHandler struct {
	followRepo follow.Repository
	userRepo   user.Repository
}

func NewFollowHandler(followRepo follow.Repository, userRepo user.Repository) *FollowHandler {
	return &FollowHandler{followRepo: followRepo, userRepo: userRepo}
}

// HandleFollow handles POST (follow) and DELETE (unfollow) on
// /api/users/{id}/follow
func (h *FollowHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	followingID := r.PathValue("id")
	if followingID == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreateFollow(w, r, followerID, followingID)
	case http.MethodDelete:
		if err := h.followRepo.Delete(r.Context(), followerID, followingID); err != nil {
			log.Printf("Error unfollowing %s -> %s: %v", followerID, followingID, err)
			http.Error(w, "Failed to unfollow", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *FollowHandler) handleCreateFollow(w http.ResponseWriter, r *http.Request, followerID, followingID string) {
	// The target must exist before creating the edge
	if _, err := h.userRepo.GetByID(r.Context(), followingID); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	f, err := h.followRepo.Create(r.Context(), followerID, followingID)
	if err != nil {
		switch {
		case errors.Is(err, follow.ErrSelfFollow):
			http.Error(w, "Cannot follow yourself", http.StatusBadRequest)
		case errors.Is(err, follow.ErrAlreadyExists):
			http.Error(w, "Already following", http.StatusConflict)
		default:
			log.Printf("Error following %s -> %s: %v", followerID, followingID, err)
			http.Error(w, "Failed to follow", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(f)
}

// UserSummary is the shape returned by follower/following listings.
type UserSummary struct {
	ID              string  `json:"id"`
	Username        *string `json:"username,omitempty"`
	FirstName       string  `json:"firstName"`
	ProfilePhotoURL *string `json:"profilePhotoUrl,omitempty"`
}

// HandleFollowers lists the users following {id}
func (h *FollowHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	h.handleListEdge(w, r, h.followRepo.ListFollowerIDs)
}

// HandleFollowing lists the users {id} follows
func (h *FollowHandler) HandleFollowing(w http.ResponseWriter, r *http.Request) {
	h.handleListEdge(w, r, h.followRepo.ListFollowingIDs)
}

func (h *FollowHandler) handleListEdge(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID string) ([]string, error)) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := middleware.UserID(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID := r.PathValue("id")
	if targetID == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	ids, err := list(r.Context(), targetID)
	if err != nil {
		log.Printf("Error listing follow edges for user %s: %v", targetID, err)
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	summaries := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		u, err := h.userRepo.GetByID(r.Context(), id)
		if err != nil {
			// A deleted user leaves a dangling edge; skip it
			continue
		}
		summaries = append(summaries, UserSummary{
			ID:              u.ID,
			Username:        u.Username,
			FirstName:       u.FirstName,
			ProfilePhotoURL: u.ProfilePhotoURL,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// HandleCounts returns follower/following counts for a user
func (h *FollowHandler) HandleCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := middleware.UserID(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID := r.PathValue("id")
	if targetID == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	counts, err := h.followRepo.Counts(r.Context(), targetID)
	if err != nil {
		log.Printf("Error getting follow counts for user %s: %v", targetID, err)
		http.Error(w, "Failed to get counts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}
