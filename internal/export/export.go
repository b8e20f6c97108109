package export

import (
	"bytes"
	"context"
	"fmt"

	"shareit/internal/clock"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// exportPageSize bounds one store read; owners with more bookings are
// fetched page by page.
const exportPageSize = 500

// Service renders an owner's bookings as an xlsx workbook.
type Service struct {
	bookings domain.BookingStore
	items    domain.ItemStore
	users    domain.UserStore
	clock    clock.Clock
	logger   *zerolog.Logger
}

func NewService(bookings domain.BookingStore, items domain.ItemStore, users domain.UserStore, clk clock.Clock, logger *zerolog.Logger) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{bookings: bookings, items: items, users: users, clock: clk, logger: logger}
}

// OwnerBookings builds the workbook for every booking of the owner's items.
func (s *Service) OwnerBookings(ctx context.Context, ownerID int64) ([]byte, error) {
	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, ownerID)
	}

	bookings, err := s.collectBookings(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Item", "Requester", "Start", "End", "Status", "Created"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	itemNames, err := s.itemNames(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			itemNames[b.ItemID],
			b.RequesterID,
			b.Start.Format("2006-01-02 15:04"),
			b.End.Format("2006-01-02 15:04"),
			string(b.Status),
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "G", 20)
	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	s.logger.Info().Int64("owner_id", ownerID).Int("bookings", len(bookings)).Msg("bookings export built")
	return buf.Bytes(), nil
}

func (s *Service) collectBookings(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	now := s.clock.Now()
	var all []*models.Booking
	for offset := 0; ; offset += exportPageSize {
		page, err := s.bookings.BookingsByOwner(ctx, ownerID, models.FilterAll, now, offset, exportPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
	}
}

func (s *Service) itemNames(ctx context.Context, ownerID int64) (map[int64]string, error) {
	names := make(map[int64]string)
	for offset := 0; ; offset += exportPageSize {
		page, err := s.items.ItemsByOwner(ctx, ownerID, offset, exportPageSize)
		if err != nil {
			return nil, err
		}
		for _, item := range page {
			names[item.ID] = item.Name
		}
		if len(page) < exportPageSize {
			return names, nil
		}
	}
}
