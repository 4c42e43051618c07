package notification

import (
	"context"
	"log"

	"github.com/jdgtl/project-october/internal/domain/drop"
	"github.com/jdgtl/project-october/internal/domain/follow"
	"github.com/jdgtl/project-october/internal/domain/user"
)

// Service fans drop announcements out to followers' devices.
// Everything here is best effort; a push failure is logged, never returned.
type Service struct {
	repo       Repository
	followRepo follow.Repository
	userRepo   user.Repository
	messenger  Messenger
}

// NewService creates a new notification service. messenger may be nil
// (push disabled), in which case DropPublished is a no-op.
func NewService(repo Repository, followRepo follow.Repository, userRepo user.Repository, messenger Messenger) *Service {
	return &Service{
		repo:       repo,
		followRepo: followRepo,
		userRepo:   userRepo,
		messenger:  messenger,
	}
}

var _ drop.Notifier = (*Service)(nil)

// DropPublished notifies every follower of the drop's author.
func (s *Service) DropPublished(ctx context.Context, d *drop.Drop) {
	if s.messenger == nil {
		return
	}

	followerIDs, err := s.followRepo.ListFollowerIDs(ctx, d.UserID)
	if err != nil {
		log.Printf("Failed to list followers for drop %s: %v", d.ID, err)
		return
	}
	if len(followerIDs) == 0 {
		return
	}

	tokens, err := s.repo.ListActiveTokensByUserIDs(ctx, followerIDs)
	if err != nil {
		log.Printf("Failed to list device tokens for drop %s: %v", d.ID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := "New drop"
	if author, err := s.userRepo.GetByID(ctx, d.UserID); err == nil && author != nil && author.Username != nil {
		title = *author.Username + " shared a drop"
	}

	body := "Tap to see what they shared"
	if d.Caption != nil && *d.Caption != "" {
		body = *d.Caption
	}

	if err := s.messenger.SendMulticast(ctx, tokens, title, body, map[string]string{"drop_id": d.ID}); err != nil {
		log.Printf("Failed to push drop %s to %d devices: %v", d.ID, len(tokens), err)
	}
}

// RegisterDevice stores a push token for the user.
func (s *Service) RegisterDevice(ctx context.Context, userID, token, platform string) (*DeviceToken, error) {
	return s.repo.RegisterDevice(ctx, userID, token, platform)
}
