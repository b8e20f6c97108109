package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/models"
)

const commentSelect = `SELECT c.id, c.item_id, c.author_id, u.name, c.text, c.created_at
                       FROM comments c JOIN users u ON u.id = c.author_id`

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	query := `INSERT INTO comments (item_id, author_id, text, created_at) VALUES (?, ?, ?, ?)`
	result, err := db.db.ExecContext(ctx, query, comment.ItemID, comment.AuthorID, comment.Text, now)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	comment.ID = id
	comment.CreatedAt = now
	return nil
}

func (db *DB) CommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	query := commentSelect + ` WHERE c.item_id = ? ORDER BY c.created_at DESC`
	rows, err := db.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("comments by item: %w", err)
	}
	return db.scanComments(rows)
}

func (db *DB) CommentsByItems(ctx context.Context, itemIDs []int64) (map[int64][]*models.Comment, error) {
	result := make(map[int64][]*models.Comment, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}
	query := commentSelect + ` WHERE c.item_id IN (` + placeholders(len(itemIDs)) + `) ORDER BY c.created_at DESC`
	rows, err := db.db.QueryContext(ctx, query, int64Args(itemIDs)...)
	if err != nil {
		return nil, fmt.Errorf("comments by items: %w", err)
	}
	comments, err := db.scanComments(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		result[c.ItemID] = append(result[c.ItemID], c)
	}
	return result, nil
}

func (db *DB) scanComments(rows *sql.Rows) ([]*models.Comment, error) {
	defer rows.Close()
	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
