package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const itemColumns = `id, owner_id, name, description, available, request_id, created_at, updated_at`

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	now := time.Now()
	query := `INSERT INTO items (owner_id, name, description, available, request_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := db.db.ExecContext(ctx, query,
		item.OwnerID, item.Name, item.Description, item.Available, item.RequestID, now, now)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	now := time.Now()
	query := `UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`
	_, err := db.db.ExecContext(ctx, query, item.Name, item.Description, item.Available, now, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	return db.scanItemRow(db.db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetItemOwned(ctx context.Context, id, ownerID int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ? AND owner_id = ?`
	return db.scanItemRow(db.db.QueryRowContext(ctx, query, id, ownerID))
}

func (db *DB) ItemExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := db.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM items WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("item exists: %w", err)
	}
	return exists, nil
}

func (db *DB) ItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("items by owner: %w", err)
	}
	return db.scanItems(rows)
}

// SearchItems matches the text against name and description,
// case-insensitively. Only available items participate.
func (db *DB) SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error) {
	pattern := "%" + strings.ToUpper(text) + "%"
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1 AND (UPPER(name) LIKE ? OR UPPER(description) LIKE ?)
              ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.db.QueryContext(ctx, query, pattern, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return db.scanItems(rows)
}

func (db *DB) ItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id IN (` + placeholders(len(requestIDs)) + `)`
	rows, err := db.db.QueryContext(ctx, query, int64Args(requestIDs)...)
	if err != nil {
		return nil, fmt.Errorf("items by request ids: %w", err)
	}
	return db.scanItems(rows)
}

func (db *DB) scanItemRow(row *sql.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Description,
		&item.Available, &item.RequestID, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &item, nil
}

func (db *DB) scanItems(rows *sql.Rows) ([]*models.Item, error) {
	defer rows.Close()
	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		err := rows.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Description,
			&item.Available, &item.RequestID, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
