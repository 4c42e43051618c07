package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jdgtl/project-october/internal/domain/item"
	"github.com/jdgtl/project-october/internal/infrastructure/crypto"
)

// ItemRepository implements the item.Repository interface for PostgreSQL.
// Access tokens are encrypted with AES-256-GCM before they touch the
// database and decrypted on the way out.
type ItemRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

// NewItemRepository creates a new PostgreSQL item repository
func NewItemRepository(db *DB, encryptor *crypto.Encryptor) *ItemRepository {
	return &ItemRepository{db: db, encryptor: encryptor}
}

const itemColumns = `id, user_id, plaid_item_id, access_token, institution_id, institution_name, transactions_cursor, created_at, updated_at`

func (r *ItemRepository) scanItem(scan func(dest ...any) error) (*item.Item, error) {
	var it item.Item
	var encryptedToken string
	var institutionID, institutionName, cursor sql.NullString

	err := scan(
		&it.ID, &it.UserID, &it.PlaidItemID, &encryptedToken,
		&institutionID, &institutionName, &cursor,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	token, err := r.encryptor.Decrypt(encryptedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	it.AccessToken = token

	if institutionID.Valid {
		it.InstitutionID = &institutionID.String
	}
	if institutionName.Valid {
		it.InstitutionName = &institutionName.String
	}
	if cursor.Valid {
		it.TransactionsCursor = &cursor.String
	}

	return &it, nil
}

// Create stores a newly linked item
func (r *ItemRepository) Create(ctx context.Context, params item.CreateParams) (*item.Item, error) {
	encryptedToken, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO plaid_items (id, user_id, plaid_item_id, access_token, institution_id, institution_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + itemColumns

	it, err := r.scanItem(r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.PlaidItemID, encryptedToken,
		params.InstitutionID, params.InstitutionName,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return it, nil
}

// GetByID retrieves an item by its local id
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM plaid_items WHERE id = $1`

	it, err := r.scanItem(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, item.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return it, nil
}

// GetByPlaidItemID retrieves an item by Plaid's item id, scoped to its owner
func (r *ItemRepository) GetByPlaidItemID(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM plaid_items WHERE user_id = $1 AND plaid_item_id = $2`

	it, err := r.scanItem(r.db.QueryRowContext(ctx, query, userID, plaidItemID).Scan)
	if err == sql.ErrNoRows {
		return nil, item.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by plaid id: %w", err)
	}

	return it, nil
}

// ListByUserID retrieves all items for a user
func (r *ItemRepository) ListByUserID(ctx context.Context, userID string) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM plaid_items WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	return r.collectItems(rows)
}

// ListAll retrieves every stored item; used by the scheduled sync
func (r *ItemRepository) ListAll(ctx context.Context) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM plaid_items ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all items: %w", err)
	}
	defer rows.Close()

	return r.collectItems(rows)
}

func (r *ItemRepository) collectItems(rows *sql.Rows) ([]*item.Item, error) {
	var items []*item.Item
	for rows.Next() {
		it, err := r.scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// UpdateCursor persists the transactions cursor after a successful sync
func (r *ItemRepository) UpdateCursor(ctx context.Context, id string, cursor string) error {
	query := `UPDATE plaid_items SET transactions_cursor = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, cursor)
	if err != nil {
		return fmt.Errorf("failed to update cursor: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check cursor update: %w", err)
	}
	if affected == 0 {
		return item.ErrItemNotFound
	}

	return nil
}

// Delete removes an item row
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plaid_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check item delete: %w", err)
	}
	if affected == 0 {
		return item.ErrItemNotFound
	}

	return nil
}
