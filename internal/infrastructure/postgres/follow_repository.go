package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jdgtl/project-october/internal/domain/follow"
)

// FollowRepository implements the follow.Repository interface for PostgreSQL
type FollowRepository struct {
	db *DB
}

// NewFollowRepository creates a new PostgreSQL follow repository
func NewFollowRepository(db *DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create adds a follow edge
func (r *FollowRepository) Create(ctx context.Context, followerID, followingID string) (*follow.Follow, error) {
	if followerID == followingID {
		return nil, follow.ErrSelfFollow
	}

	query := `
		INSERT INTO follows (id, follower_id, following_id)
		VALUES ($1, $2, $3)
		RETURNING id, follower_id, following_id, created_at
	`

	var f follow.Follow
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), followerID, followingID).Scan(
		&f.ID, &f.FollowerID, &f.FollowingID, &f.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, follow.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create follow: %w", err)
	}

	return &f, nil
}

// Delete removes a follow edge; removing an absent edge is not an error
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

// Exists reports whether follower follows following
func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

// ListFollowerIDs returns the ids of users following the given user
func (r *FollowRepository) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx,
		`SELECT follower_id FROM follows WHERE following_id = $1 ORDER BY created_at`,
		userID,
	)
}

// ListFollowingIDs returns the ids of users the given user follows
func (r *FollowRepository) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx,
		`SELECT following_id FROM follows WHERE follower_id = $1 ORDER BY created_at`,
		userID,
	)
}

func (r *FollowRepository) listIDs(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate follow ids: %w", err)
	}

	return ids, nil
}

// Counts summarizes a user's social graph
func (r *FollowRepository) Counts(ctx context.Context, userID string) (*follow.Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`

	var c follow.Counts
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.Followers, &c.Following); err != nil {
		return nil, fmt.Errorf("failed to count follows: %w", err)
	}

	return &c, nil
}
