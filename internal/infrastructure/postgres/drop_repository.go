package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/jdgtl/project-october/internal/domain/drop"
)

// DropRepository implements the drop.Repository interface for PostgreSQL
type DropRepository struct {
	db *DB
}

// NewDropRepository creates a new PostgreSQL drop repository
func NewDropRepository(db *DB) *DropRepository {
	return &DropRepository{db: db}
}

const dropColumns = `id, user_id, transaction_id, caption, show_amount, show_range, show_merchant, show_date, show_category, is_public, created_at, updated_at`

func scanDrop(scan func(dest ...any) error) (*drop.Drop, error) {
	var d drop.Drop
	var caption sql.NullString

	err := scan(
		&d.ID, &d.UserID, &d.TransactionID, &caption,
		&d.ShowAmount, &d.ShowRange, &d.ShowMerchant, &d.ShowDate, &d.ShowCategory,
		&d.IsPublic, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if caption.Valid {
		d.Caption = &caption.String
	}

	return &d, nil
}

// Create publishes a drop
func (r *DropRepository) Create(ctx context.Context, params drop.CreateParams) (*drop.Drop, error) {
	query := `
		INSERT INTO drops (id, user_id, transaction_id, caption, show_amount, show_range, show_merchant, show_date, show_category, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + dropColumns

	d, err := scanDrop(r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.TransactionID, params.Caption,
		params.ShowAmount, params.ShowRange, params.ShowMerchant, params.ShowDate, params.ShowCategory,
		params.IsPublic,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create drop: %w", err)
	}

	return d, nil
}

// GetByID retrieves a drop by id
func (r *DropRepository) GetByID(ctx context.Context, id string) (*drop.Drop, error) {
	query := `SELECT ` + dropColumns + ` FROM drops WHERE id = $1`

	d, err := scanDrop(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, drop.ErrDropNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drop: %w", err)
	}

	return d, nil
}

// ListByUserID retrieves a user's drops, newest first
func (r *DropRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*drop.Drop, error) {
	query := `
		SELECT ` + dropColumns + `
		FROM drops
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list drops: %w", err)
	}
	defer rows.Close()

	var drops []*drop.Drop
	for rows.Next() {
		d, err := scanDrop(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drop: %w", err)
		}
		drops = append(drops, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drops: %w", err)
	}

	return drops, nil
}

// Delete removes a drop and its photo links
func (r *DropRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete drop: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check drop delete: %w", err)
	}
	if affected == 0 {
		return drop.ErrDropNotFound
	}

	return nil
}

// DeleteByTransactionIDs removes drops built on the given transactions;
// used by the purge path of item removal
func (r *DropRepository) DeleteByTransactionIDs(ctx context.Context, transactionIDs []string) error {
	if len(transactionIDs) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM drops WHERE transaction_id = ANY($1)`,
		pq.Array(transactionIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to delete drops for transactions: %w", err)
	}

	return nil
}

// LinkPhotos attaches previously uploaded photos to a drop in display order
func (r *DropRepository) LinkPhotos(ctx context.Context, dropID string, photoIDs []string) error {
	if len(photoIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO drop_photos (id, drop_id, photo_id, display_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (drop_id, photo_id) DO UPDATE SET display_order = EXCLUDED.display_order
	`

	for i, photoID := range photoIDs {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), dropID, photoID, i); err != nil {
			return fmt.Errorf("failed to link photo %s: %w", photoID, err)
		}
	}

	return nil
}

// ListFeed returns public drops from users the viewer follows, newest
// first. Transaction fields hidden by a drop's toggles come back NULL
// from the query itself, so hidden data never leaves the database.
func (r *DropRepository) ListFeed(ctx context.Context, viewerID string, limit, offset int) ([]*drop.FeedEntry, error) {
	query := `
		SELECT
			d.id, d.user_id, d.transaction_id, d.caption,
			d.show_amount, d.show_range, d.show_merchant, d.show_date, d.show_category,
			d.is_public, d.created_at, d.updated_at,
			u.id, u.username, u.profile_photo_url,
			CASE WHEN d.show_amount THEN t.amount END,
			CASE WHEN d.show_merchant THEN t.merchant_name END,
			CASE WHEN d.show_date THEN t.date END,
			CASE WHEN d.show_category THEN t.category END,
			COALESCE(
				(SELECT array_agg(p.photo_url ORDER BY dp.display_order)
				 FROM drop_photos dp
				 JOIN transaction_photos p ON p.id = dp.photo_id
				 WHERE dp.drop_id = d.id),
				'{}'
			)
		FROM drops d
		JOIN users u ON u.id = d.user_id
		JOIN transactions t ON t.id = d.transaction_id
		JOIN follows f ON f.following_id = d.user_id AND f.follower_id = $1
		WHERE d.is_public AND NOT u.global_privacy_enabled
		ORDER BY d.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	defer rows.Close()

	var entries []*drop.FeedEntry
	for rows.Next() {
		var e drop.FeedEntry
		var caption, username, photoURL, merchantName sql.NullString
		var amount sql.NullString
		var date sql.NullTime
		var category []string

		err := rows.Scan(
			&e.Drop.ID, &e.Drop.UserID, &e.Drop.TransactionID, &caption,
			&e.Drop.ShowAmount, &e.Drop.ShowRange, &e.Drop.ShowMerchant, &e.Drop.ShowDate, &e.Drop.ShowCategory,
			&e.Drop.IsPublic, &e.Drop.CreatedAt, &e.Drop.UpdatedAt,
			&e.AuthorID, &username, &photoURL,
			&amount, &merchantName, &date, pq.Array(&category),
			pq.Array(&e.PhotoURLs),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed entry: %w", err)
		}

		if caption.Valid {
			e.Drop.Caption = &caption.String
		}
		if username.Valid {
			e.AuthorUsername = &username.String
		}
		if photoURL.Valid {
			e.AuthorPhotoURL = &photoURL.String
		}
		if amount.Valid {
			dec, err := decimal.NewFromString(amount.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse feed amount: %w", err)
			}
			e.Amount = &dec
		}
		if merchantName.Valid {
			e.MerchantName = &merchantName.String
		}
		if date.Valid {
			e.Date = &date.Time
		}
		e.Category = category

		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed: %w", err)
	}

	return entries, nil
}
