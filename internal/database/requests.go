package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	now := time.Now()
	query := `INSERT INTO requests (author_id, description, created_at) VALUES (?, ?, ?)`
	result, err := db.db.ExecContext(ctx, query, request.AuthorID, request.Description, now)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	request.ID = id
	request.CreatedAt = now
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, author_id, description, created_at FROM requests WHERE id = ?`
	var r models.ItemRequest
	err := db.db.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.AuthorID, &r.Description, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &r, nil
}

func (db *DB) RequestsByAuthor(ctx context.Context, authorID int64) ([]*models.ItemRequest, error) {
	query := `SELECT id, author_id, description, created_at FROM requests
              WHERE author_id = ? ORDER BY created_at DESC`
	rows, err := db.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("requests by author: %w", err)
	}
	return db.scanRequests(rows)
}

func (db *DB) RequestsExcludingAuthor(ctx context.Context, authorID int64, offset, limit int) ([]*models.ItemRequest, error) {
	query := `SELECT id, author_id, description, created_at FROM requests
              WHERE author_id != ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := db.db.QueryContext(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("requests excluding author: %w", err)
	}
	return db.scanRequests(rows)
}

func (db *DB) scanRequests(rows *sql.Rows) ([]*models.ItemRequest, error) {
	defer rows.Close()
	var requests []*models.ItemRequest
	for rows.Next() {
		r := &models.ItemRequest{}
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
