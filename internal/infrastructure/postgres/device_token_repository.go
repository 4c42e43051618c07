package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jdgtl/project-october/internal/domain/notification"
)

// DeviceTokenRepository implements the notification.Repository interface
// for PostgreSQL
type DeviceTokenRepository struct {
	db *DB
}

// NewDeviceTokenRepository creates a new PostgreSQL device-token repository
func NewDeviceTokenRepository(db *DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// RegisterDevice upserts a token for a user, reactivating it if needed.
// A token re-registered by a different user moves to that user.
func (r *DeviceTokenRepository) RegisterDevice(ctx context.Context, userID, token, platform string) (*notification.DeviceToken, error) {
	query := `
		INSERT INTO device_tokens (id, user_id, token, platform, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			active = TRUE,
			updated_at = NOW()
		RETURNING id, user_id, token, platform, active, created_at, updated_at
	`

	var dt notification.DeviceToken
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), userID, token, platform).Scan(
		&dt.ID, &dt.UserID, &dt.Token, &dt.Platform, &dt.Active, &dt.CreatedAt, &dt.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}

	return &dt, nil
}

// ListActiveTokensByUserIDs returns the active tokens for the given users
func (r *DeviceTokenRepository) ListActiveTokensByUserIDs(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `SELECT token FROM device_tokens WHERE user_id = ANY($1) AND active`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device tokens: %w", err)
	}

	return tokens, nil
}

// DeactivateToken marks a token inactive; done when FCM reports it stale
func (r *DeviceTokenRepository) DeactivateToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE device_tokens SET active = FALSE, updated_at = NOW() WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}
	return nil
}
