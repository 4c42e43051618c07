package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jdgtl/project-october/internal/domain/photo"
)

// PhotoRepository implements the photo.Repository interface for PostgreSQL
type PhotoRepository struct {
	db *DB
}

// NewPhotoRepository creates a new PostgreSQL photo repository
func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

const photoColumns = `id, transaction_id, user_id, photo_url, thumbnail_url, display_order, created_at`

func scanPhoto(scan func(dest ...any) error) (*photo.Photo, error) {
	var p photo.Photo
	var thumbnailURL sql.NullString

	err := scan(
		&p.ID, &p.TransactionID, &p.UserID, &p.PhotoURL,
		&thumbnailURL, &p.DisplayOrder, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if thumbnailURL.Valid {
		p.ThumbnailURL = &thumbnailURL.String
	}

	return &p, nil
}

// Create records an uploaded photo
func (r *PhotoRepository) Create(ctx context.Context, params photo.CreateParams) (*photo.Photo, error) {
	query := `
		INSERT INTO transaction_photos (id, transaction_id, user_id, photo_url, thumbnail_url, display_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + photoColumns

	p, err := scanPhoto(r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.TransactionID, params.UserID,
		params.PhotoURL, params.ThumbnailURL, params.DisplayOrder,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	return p, nil
}

// GetByID retrieves a photo by id
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*photo.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM transaction_photos WHERE id = $1`

	p, err := scanPhoto(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, photo.ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return p, nil
}

// ListByTransactionID retrieves a transaction's photos in display order
func (r *PhotoRepository) ListByTransactionID(ctx context.Context, transactionID string) ([]*photo.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM transaction_photos
		WHERE transaction_id = $1
		ORDER BY display_order
	`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*photo.Photo
	for rows.Next() {
		p, err := scanPhoto(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate photos: %w", err)
	}

	return photos, nil
}

// Delete removes a photo row
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transaction_photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check photo delete: %w", err)
	}
	if affected == 0 {
		return photo.ErrPhotoNotFound
	}

	return nil
}
