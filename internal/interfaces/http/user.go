package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jdgtl/project-october/internal/domain/follow"
	"github.com/jdgtl/project-october/internal/domain/user"
	"github.com/jdgtl/project-october/internal/shared/middleware"
)

type UserHandler struct {
	userRepo   user.Repository
	followRepo follow.Repository
}

func NewUserHandler(userRepo user.Repository, followRepo follow.Repository) *UserHandler {
	return &UserHandler{userRepo: userRepo, followRepo: followRepo}
}

type UpdateProfileRequest struct {
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	Username        *string `json:"username,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	ProfilePhotoURL *string `json:"profilePhotoUrl,omitempty"`
	GlobalPrivacy   *bool   `json:"globalPrivacyEnabled,omitempty"`
}

// ProfileResponse is the public view of a user, with follow counts
type ProfileResponse struct {
	ID              string  `json:"id"`
	Username        *string `json:"username,omitempty"`
	FirstName       string  `json:"firstName"`
	Bio             *string `json:"bio,omitempty"`
	ProfilePhotoURL *string `json:"profilePhotoUrl,omitempty"`
	Followers       int64   `json:"followers"`
	Following       int64   `json:"following"`
	IsFollowing     bool    `json:"isFollowing"`
}

// HandleMe handles GET and PATCH for the current user
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetMe(w, r, userID)
	case http.MethodPatch:
		h.handleUpdateMe(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *UserHandler) handleGetMe(w http.ResponseWriter, r *http.Request, userID string) {
	u, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

func (h *UserHandler) handleUpdateMe(w http.ResponseWriter, r *http.Request, userID string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.userRepo.UpdateProfile(r.Context(), userID, user.UpdateProfileParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Username:        req.Username,
		Bio:             req.Bio,
		ProfilePhotoURL: req.ProfilePhotoURL,
		GlobalPrivacy:   req.GlobalPrivacy,
	})
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			http.Error(w, "Username already taken", http.StatusConflict)
			return
		}
		log.Printf("Error updating user %s: %v", userID, err)
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// HandleProfile returns another user's public profile by username
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	viewerID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	username := r.PathValue("username")
	if username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	u, err := h.userRepo.GetByUsername(r.Context(), username)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	counts, err := h.followRepo.Counts(r.Context(), u.ID)
	if err != nil {
		log.Printf("Error getting follow counts for user %s: %v", u.ID, err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	isFollowing, err := h.followRepo.Exists(r.Context(), viewerID, u.ID)
	if err != nil {
		log.Printf("Error checking follow edge %s -> %s: %v", viewerID, u.ID, err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ProfileResponse{
		ID:              u.ID,
		Username:        u.Username,
		FirstName:       u.FirstName,
		Bio:             u.Bio,
		ProfilePhotoURL: u.ProfilePhotoURL,
		Followers:       counts.Followers,
		Following:       counts.Following,
		IsFollowing:     isFollowing,
	})
}
