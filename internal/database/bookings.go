package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `id, item_id, requester_id, item_owner_id, time_from, time_to, status, created_at, updated_at`

// Booking times are stored as text and sqlite compares them lexicographically,
// so every bound time.Time must be normalized to UTC first. Client input keeps
// whatever offset the RFC3339 payload carried.

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	query := `INSERT INTO bookings (item_id, requester_id, item_owner_id, time_from, time_to, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.db.ExecContext(ctx, query,
		booking.ItemID, booking.RequesterID, booking.ItemOwnerID,
		booking.Start.UTC(), booking.End.UTC(), string(booking.Status), now, now)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return db.scanBookingRow(db.db.QueryRowContext(ctx, query, id))
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus, updatedAt time.Time) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	_, err := db.db.ExecContext(ctx, query, string(status), updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

func (db *DB) BookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE item_id = ?`
	rows, err := db.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("bookings by item: %w", err)
	}
	return db.scanBookings(rows)
}

func (db *DB) BookingsByRequester(ctx context.Context, userID int64, filter models.ListFilter, now time.Time, offset, limit int) ([]*models.Booking, error) {
	return db.listBookings(ctx, "requester_id", userID, filter, now, offset, limit)
}

func (db *DB) BookingsByOwner(ctx context.Context, ownerID int64, filter models.ListFilter, now time.Time, offset, limit int) ([]*models.Booking, error) {
	return db.listBookings(ctx, "item_owner_id", ownerID, filter, now, offset, limit)
}

// listBookings builds the filtered listing query. CURRENT is the only filter
// ordered by start ascending; everything else descends.
func (db *DB) listBookings(ctx context.Context, subjectColumn string, subjectID int64, filter models.ListFilter, now time.Time, offset, limit int) ([]*models.Booking, error) {
	now = now.UTC()
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + subjectColumn + ` = ?`
	args := []interface{}{subjectID}
	order := ` ORDER BY time_from DESC`

	switch {
	case filter.IsFuture():
		query += ` AND time_from > ?`
		args = append(args, now)
	case filter.IsPast():
		query += ` AND time_to < ?`
		args = append(args, now)
	case filter.IsCurrent():
		query += ` AND time_from <= ? AND time_to >= ?`
		args = append(args, now, now)
		order = ` ORDER BY time_from ASC`
	case filter.IsByStatus():
		query += ` AND status = ?`
		args = append(args, string(filter.Status()))
	}

	query += order + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings (%s): %w", filter, err)
	}
	return db.scanBookings(rows)
}

// LastBooking returns the APPROVED booking with the greatest start not after
// now, or nil when the item has none.
func (db *DB) LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND time_from <= ? AND status = ?
              ORDER BY time_from DESC LIMIT 1`
	return db.scanBookingRow(db.db.QueryRowContext(ctx, query, itemID, now.UTC(), string(models.StatusApproved)))
}

// NextBooking returns the APPROVED booking with the smallest start after now,
// or nil when the item has none.
func (db *DB) NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND time_from > ? AND status = ?
              ORDER BY time_from ASC LIMIT 1`
	return db.scanBookingRow(db.db.QueryRowContext(ctx, query, itemID, now.UTC(), string(models.StatusApproved)))
}

func (db *DB) LastBookings(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error) {
	return db.batchResolve(ctx, itemIDs, now, true)
}

func (db *DB) NextBookings(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*models.Booking, error) {
	return db.batchResolve(ctx, itemIDs, now, false)
}

// batchResolve fetches all APPROVED candidates for the item set in one query
// and reduces to one booking per item in Go.
func (db *DB) batchResolve(ctx context.Context, itemIDs []int64, now time.Time, last bool) (map[int64]*models.Booking, error) {
	result := make(map[int64]*models.Booking, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	cond := `time_from <= ?`
	if !last {
		cond = `time_from > ?`
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id IN (` + placeholders(len(itemIDs)) + `) AND ` + cond + ` AND status = ?`
	args := append(int64Args(itemIDs), now.UTC(), string(models.StatusApproved))

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("batch last/next bookings: %w", err)
	}
	bookings, err := db.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		best, ok := result[b.ItemID]
		if !ok {
			result[b.ItemID] = b
			continue
		}
		if last && b.Start.After(best.Start) {
			result[b.ItemID] = b
		}
		if !last && b.Start.Before(best.Start) {
			result[b.ItemID] = b
		}
	}
	return result, nil
}

// HasFinishedBooking reports whether the user had a booking of the item that
// ended before now. Status is deliberately not checked here.
func (db *DB) HasFinishedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE requester_id = ? AND item_id = ? AND time_to < ?)`
	err := db.db.QueryRowContext(ctx, query, userID, itemID, now.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has finished booking: %w", err)
	}
	return exists, nil
}

func (db *DB) scanBookingRow(row *sql.Row) (*models.Booking, error) {
	var b models.Booking
	var status string
	err := row.Scan(&b.ID, &b.ItemID, &b.RequesterID, &b.ItemOwnerID,
		&b.Start, &b.End, &status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	b.Status = models.BookingStatus(status)
	return &b, nil
}

func (db *DB) scanBookings(rows *sql.Rows) ([]*models.Booking, error) {
	defer rows.Close()
	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		var status string
		err := rows.Scan(&b.ID, &b.ItemID, &b.RequesterID, &b.ItemOwnerID,
			&b.Start, &b.End, &status, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.Status = models.BookingStatus(status)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
