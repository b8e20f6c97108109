package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/clock"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns booking validity: creation checks, the approve/reject
// transition and the filtered read queries, including last/next resolution
// for item views.
type BookingService struct {
	bookings domain.BookingStore
	items    domain.ItemStore
	users    domain.UserStore
	eventBus domain.EventPublisher
	worker   domain.SyncWorker
	clock    clock.Clock
	logger   *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingStore,
	items domain.ItemStore,
	users domain.UserStore,
	eventBus domain.EventPublisher,
	worker domain.SyncWorker,
	clk clock.Clock,
	logger *zerolog.Logger,
) *BookingService {
	if clk == nil {
		clk = clock.System()
	}
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		eventBus: eventBus,
		worker:   worker,
		clock:    clk,
		logger:   logger,
	}
}

// Create validates and persists a new booking in WAITING status. Checks run
// in a fixed order and the first failure wins.
func (s *BookingService) Create(ctx context.Context, requesterID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if err := validateTimeRange(start, end); err != nil {
		return nil, err
	}

	exists, err := s.users.UserExists(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, requesterID)
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, itemID)
	}
	if item.OwnerID == requesterID {
		return nil, domain.ErrSelfBooking
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: item %d", domain.ErrItemUnavailable, itemID)
	}

	if err := s.checkTimeConflicts(ctx, itemID, start, end); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ItemID:      itemID,
		RequesterID: requesterID,
		// Owner is snapshotted here; approval rights never follow a later
		// ownership transfer.
		ItemOwnerID: item.OwnerID,
		Start:       start,
		End:         end,
		Status:      models.StatusWaiting,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking)
	s.enqueueSync(ctx, booking)
	return booking, nil
}

// Approve decides a WAITING booking. Only the owner recorded on the booking
// may decide, and only once.
func (s *BookingService) Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, ownerID)
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrBookingNotFound, bookingID)
	}
	if booking.ItemOwnerID != ownerID {
		// Not-found rather than forbidden, so non-owners cannot probe ids.
		return nil, fmt.Errorf("%w: id %d", domain.ErrBookingNotFound, bookingID)
	}
	if booking.Status != models.StatusWaiting {
		return nil, fmt.Errorf("%w: booking %d is %s", domain.ErrStatusConflict, bookingID, booking.Status)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	now := s.clock.Now()
	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, status, now); err != nil {
		return nil, err
	}
	booking.Status = status
	booking.UpdatedAt = now

	s.publishEvent(eventType, booking)
	s.enqueueSync(ctx, booking)
	return booking, nil
}

// Get returns the booking to its requester or the item's owner; everyone
// else gets not-found.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, userID)
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrBookingNotFound, bookingID)
	}
	if booking.RequesterID != userID && booking.ItemOwnerID != userID {
		return nil, fmt.Errorf("%w: id %d", domain.ErrBookingNotFound, bookingID)
	}
	return booking, nil
}

// ListByRequester returns the user's own bookings filtered by state token.
func (s *BookingService) ListByRequester(ctx context.Context, userID int64, stateToken string, from, size int) ([]*models.Booking, error) {
	return s.list(ctx, userID, stateToken, from, size, s.bookings.BookingsByRequester)
}

// ListByOwner returns bookings of items the user owns, filtered by state token.
func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, stateToken string, from, size int) ([]*models.Booking, error) {
	return s.list(ctx, ownerID, stateToken, from, size, s.bookings.BookingsByOwner)
}

type listQuery func(ctx context.Context, subjectID int64, filter models.ListFilter, now time.Time, offset, limit int) ([]*models.Booking, error)

func (s *BookingService) list(ctx context.Context, subjectID int64, stateToken string, from, size int, query listQuery) ([]*models.Booking, error) {
	exists, err := s.users.UserExists(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, subjectID)
	}

	filter, ok := models.ParseListFilter(stateToken)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownState, stateToken)
	}

	offset, limit, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}

	bookings, err := query(ctx, subjectID, filter, s.clock.Now(), offset, limit)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return bookings, nil
}

// LastAndNext resolves the item's most recent started and nearest upcoming
// APPROVED bookings. Either may be nil.
func (s *BookingService) LastAndNext(ctx context.Context, itemID int64) (last, next *models.Booking, err error) {
	now := s.clock.Now()
	last, err = s.bookings.LastBooking(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	next, err = s.bookings.NextBooking(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	return last, next, nil
}

// LastAndNextBatch is the multi-item form used by owner item listings.
func (s *BookingService) LastAndNextBatch(ctx context.Context, itemIDs []int64) (map[int64]*models.Booking, map[int64]*models.Booking, error) {
	now := s.clock.Now()
	last, err := s.bookings.LastBookings(ctx, itemIDs, now)
	if err != nil {
		return nil, nil, err
	}
	next, err := s.bookings.NextBookings(ctx, itemIDs, now)
	if err != nil {
		return nil, nil, err
	}
	return last, next, nil
}

func validateTimeRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end are required", domain.ErrInvalidTimeRange)
	}
	if start.Equal(end) {
		return fmt.Errorf("%w: zero-length rental", domain.ErrInvalidTimeRange)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end before start", domain.ErrInvalidTimeRange)
	}
	return nil
}

// checkTimeConflicts scans the item's bookings once. A candidate conflicts
// when an existing interval strictly contains it, is strictly contained by
// it, or matches it exactly. Plain partial overlaps pass; that mirrors the
// behavior the product signed off on.
func (s *BookingService) checkTimeConflicts(ctx context.Context, itemID int64, start, end time.Time) error {
	bookings, err := s.bookings.BookingsByItem(ctx, itemID)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		contains := b.Start.Before(start) && b.End.After(end)
		contained := b.Start.After(start) && b.End.Before(end)
		identical := b.Start.Equal(start) && b.End.Equal(end)
		if contains || contained || identical {
			metrics.IncBookingConflict()
			return fmt.Errorf("%w: with booking %d", domain.ErrTimeConflict, b.ID)
		}
	}
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		ItemID:      booking.ItemID,
		RequesterID: booking.RequesterID,
		ItemOwnerID: booking.ItemOwnerID,
		Start:       booking.Start,
		End:         booking.End,
		Status:      booking.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking) {
	if s.worker == nil {
		return
	}
	if err := s.worker.EnqueueBooking(ctx, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sync enqueue error")
	}
}
