package drop

import (
	"context"
	"fmt"
	"log"

	"github.com/jdgtl/project-october/internal/domain/transaction"
)

// Notifier is told when a drop goes public so followers can be pinged.
// Delivery is best effort and must not fail drop creation.
type Notifier interface {
	DropPublished(ctx context.Context, d *Drop)
}

// Service handles drop publication and access control
type Service struct {
	repo            Repository
	transactionRepo transaction.Repository
	notifier        Notifier
}

// NewService creates a new drop service. notifier may be nil.
func NewService(repo Repository, transactionRepo transaction.Repository, notifier Notifier) *Service {
	return &Service{
		repo:            repo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
	}
}

// Create publishes a transaction as a drop. The transaction must exist,
// belong to the caller and not be soft-deleted.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Drop, error) {
	tx, err := s.transactionRepo.GetByID(ctx, params.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if tx == nil || tx.DeletedAt != nil {
		return nil, transaction.ErrTransactionNotFound
	}
	if tx.UserID != params.UserID {
		return nil, ErrForbidden
	}

	d, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create drop: %w", err)
	}

	if len(params.PhotoIDs) > 0 {
		// Photo linking failures don't fail the drop itself
		if err := s.repo.LinkPhotos(ctx, d.ID, params.PhotoIDs); err != nil {
			log.Printf("Failed to link %d photos to drop %s: %v", len(params.PhotoIDs), d.ID, err)
		}
	}

	if s.notifier != nil && d.IsPublic {
		s.notifier.DropPublished(ctx, d)
	}

	return d, nil
}

// Get returns a drop. Private drops are only visible to their owner.
func (s *Service) Get(ctx context.Context, viewerID, dropID string) (*Drop, error) {
	d, err := s.repo.GetByID(ctx, dropID)
	if err != nil {
		return nil, fmt.Errorf("failed to get drop: %w", err)
	}
	if d == nil {
		return nil, ErrDropNotFound
	}
	if !d.IsPublic && d.UserID != viewerID {
		return nil, ErrDropNotFound
	}
	return d, nil
}

// Delete removes a drop owned by the caller.
func (s *Service) Delete(ctx context.Context, userID, dropID string) error {
	d, err := s.repo.GetByID(ctx, dropID)
	if err != nil {
		return fmt.Errorf("failed to get drop: %w", err)
	}
	if d == nil {
		return ErrDropNotFound
	}
	if d.UserID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, dropID)
}
