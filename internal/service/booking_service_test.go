package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/clock"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingService(store *mockStore, bus *mockEventBus, worker *mockWorker, clk clock.Clock) *BookingService {
	logger := zerolog.New(io.Discard)
	return NewBookingService(store, store, store, bus, worker, clk, &logger)
}

func TestBookingServiceCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(24 * time.Hour)
	end := now.Add(48 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		store := new(mockStore)
		bus := new(mockEventBus)
		worker := new(mockWorker)
		svc := newBookingService(store, bus, worker, clock.Fixed(now))

		store.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		store.On("GetItem", ctx, int64(7)).Return(&models.Item{ID: 7, OwnerID: 1, Available: true}, nil).Once()
		store.On("BookingsByItem", ctx, int64(7)).Return([]*models.Booking{}, nil).Once()
		store.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()
		worker.On("EnqueueBooking", ctx, mock.Anything).Return(nil).Once()

		booking, err := svc.Create(ctx, 2, 7, start, end)
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, booking.Status)
		assert.Equal(t, int64(1), booking.ItemOwnerID)
		assert.Equal(t, int64(2), booking.RequesterID)
		store.AssertExpectations(t)
		bus.AssertExpectations(t)
		worker.AssertExpectations(t)
	})

	t.Run("InvalidTimeRanges", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		cases := []struct {
			name       string
			start, end time.Time
		}{
			{"ZeroStart", time.Time{}, end},
			{"ZeroEnd", start, time.Time{}},
			{"EqualEndpoints", start, start},
			{"EndBeforeStart", end, start},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, 2, 7, tc.start, tc.end)
				assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
			})
		}
		// No store call happens before the range check.
		store.AssertNotCalled(t, "UserExists", mock.Anything, mock.Anything)
	})

	t.Run("UnknownRequester", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(99)).Return(false, nil).Once()

		_, err := svc.Create(ctx, 99, 7, start, end)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		store.AssertExpectations(t)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		store.On("GetItem", ctx, int64(404)).Return(nil, nil).Once()

		_, err := svc.Create(ctx, 2, 404, start, end)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
		store.AssertExpectations(t)
	})

	t.Run("OwnItemRejected", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
		store.On("GetItem", ctx, int64(7)).Return(&models.Item{ID: 7, OwnerID: 1, Available: true}, nil).Once()

		_, err := svc.Create(ctx, 1, 7, start, end)
		assert.ErrorIs(t, err, domain.ErrSelfBooking)
	})

	t.Run("UnavailableItem", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		store.On("GetItem", ctx, int64(7)).Return(&models.Item{ID: 7, OwnerID: 1, Available: false}, nil).Once()

		_, err := svc.Create(ctx, 2, 7, start, end)
		assert.ErrorIs(t, err, domain.ErrItemUnavailable)
	})
}

func TestBookingServiceTimeConflicts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return now.AddDate(0, 0, d) }

	existing := &models.Booking{ID: 50, Start: day(10), End: day(20)}

	cases := []struct {
		name       string
		start, end time.Time
		conflict   bool
	}{
		{"StrictlyInsideExisting", day(12), day(18), true},
		{"StrictlyAroundExisting", day(8), day(22), true},
		{"ExactMatch", day(10), day(20), true},
		{"PartialOverlapLeft", day(8), day(15), false},
		{"PartialOverlapRight", day(15), day(25), false},
		{"SharedStartShorter", day(10), day(15), false},
		{"SharedEndLater", day(15), day(20), false},
		{"Disjoint", day(30), day(40), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(mockStore)
			bus := new(mockEventBus)
			worker := new(mockWorker)
			svc := newBookingService(store, bus, worker, clock.Fixed(now))

			store.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
			store.On("GetItem", ctx, int64(7)).Return(&models.Item{ID: 7, OwnerID: 1, Available: true}, nil).Once()
			store.On("BookingsByItem", ctx, int64(7)).Return([]*models.Booking{existing}, nil).Once()
			if !tc.conflict {
				store.On("CreateBooking", ctx, mock.Anything).Return(nil).Once()
				bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()
				worker.On("EnqueueBooking", ctx, mock.Anything).Return(nil).Once()
			}

			_, err := svc.Create(ctx, 2, 7, tc.start, tc.end)
			if tc.conflict {
				assert.ErrorIs(t, err, domain.ErrTimeConflict)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestBookingServiceApprove(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	waiting := func() *models.Booking {
		return &models.Booking{ID: 5, ItemID: 7, RequesterID: 2, ItemOwnerID: 1, Status: models.StatusWaiting}
	}

	t.Run("ApproveAndReject", func(t *testing.T) {
		for _, tc := range []struct {
			name     string
			approved bool
			want     models.BookingStatus
		}{
			{"Approve", true, models.StatusApproved},
			{"Reject", false, models.StatusRejected},
		} {
			t.Run(tc.name, func(t *testing.T) {
				store := new(mockStore)
				bus := new(mockEventBus)
				worker := new(mockWorker)
				svc := newBookingService(store, bus, worker, clock.Fixed(now))

				store.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
				store.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
				store.On("UpdateBookingStatus", ctx, int64(5), tc.want, now).Return(nil).Once()
				bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()
				worker.On("EnqueueBooking", ctx, mock.Anything).Return(nil).Once()

				booking, err := svc.Approve(ctx, 1, 5, tc.approved)
				require.NoError(t, err)
				assert.Equal(t, tc.want, booking.Status)
				assert.Equal(t, now, booking.UpdatedAt)
				store.AssertExpectations(t)
			})
		}
	})

	t.Run("NonOwnerSeesNotFound", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		store.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()

		_, err := svc.Approve(ctx, 2, 5, true)
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
		store.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		for _, status := range []models.BookingStatus{models.StatusApproved, models.StatusRejected} {
			store := new(mockStore)
			svc := newBookingService(store, nil, nil, clock.Fixed(now))

			decided := waiting()
			decided.Status = status
			store.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
			store.On("GetBooking", ctx, int64(5)).Return(decided, nil).Once()

			_, err := svc.Approve(ctx, 1, 5, true)
			assert.ErrorIs(t, err, domain.ErrStatusConflict)
		}
	})
}

func TestBookingServiceGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := &models.Booking{ID: 5, ItemID: 7, RequesterID: 2, ItemOwnerID: 1, Status: models.StatusWaiting}

	cases := []struct {
		name   string
		caller int64
		found  bool
	}{
		{"Requester", 2, true},
		{"Owner", 1, true},
		{"Stranger", 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(mockStore)
			svc := newBookingService(store, nil, nil, clock.Fixed(now))

			store.On("UserExists", ctx, tc.caller).Return(true, nil).Once()
			store.On("GetBooking", ctx, int64(5)).Return(booking, nil).Once()

			got, err := svc.Get(ctx, tc.caller, 5)
			if tc.found {
				require.NoError(t, err)
				assert.Equal(t, booking.ID, got.ID)
			} else {
				assert.ErrorIs(t, err, domain.ErrBookingNotFound)
			}
		})
	}
}

func TestBookingServiceListing(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("FilterAndWindowPassedThrough", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		rows := []*models.Booking{{ID: 9}}
		store.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		store.On("BookingsByRequester", ctx, int64(2), models.FilterCurrent, now, 6, 3).Return(rows, nil).Once()

		got, err := svc.ListByRequester(ctx, 2, "current", 7, 3)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
		store.AssertExpectations(t)
	})

	t.Run("StatusTokenForOwner", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(1)).Return(true, nil).Once()
		store.On("BookingsByOwner", ctx, int64(1), models.FilterByStatus(models.StatusWaiting), now, 0, 20).
			Return([]*models.Booking{}, nil).Once()

		got, err := svc.ListByOwner(ctx, 1, "WAITING", 0, 20)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UnknownStateToken", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(2)).Return(true, nil).Once()

		_, err := svc.ListByRequester(ctx, 2, "SOMETIMES", 0, 20)
		assert.ErrorIs(t, err, domain.ErrUnknownState)
	})

	t.Run("BadPagination", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(2)).Return(true, nil).Twice()

		_, err := svc.ListByRequester(ctx, 2, "ALL", -1, 20)
		assert.ErrorIs(t, err, domain.ErrInvalidPagination)

		_, err = svc.ListByRequester(ctx, 2, "ALL", 0, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidPagination)
	})

	t.Run("NilResultBecomesEmptySlice", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, nil, nil, clock.Fixed(now))

		store.On("UserExists", ctx, int64(2)).Return(true, nil).Once()
		store.On("BookingsByRequester", ctx, int64(2), models.FilterAll, now, 0, 20).Return(nil, nil).Once()

		got, err := svc.ListByRequester(ctx, 2, "", 0, 20)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestBookingServiceLastAndNext(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store := new(mockStore)
	svc := newBookingService(store, nil, nil, clock.Fixed(now))

	last := &models.Booking{ID: 1, Start: now.Add(-time.Hour)}
	next := &models.Booking{ID: 2, Start: now.Add(time.Hour)}
	store.On("LastBooking", ctx, int64(7), now).Return(last, nil).Once()
	store.On("NextBooking", ctx, int64(7), now).Return(next, nil).Once()

	gotLast, gotNext, err := svc.LastAndNext(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, last, gotLast)
	assert.Equal(t, next, gotNext)
	store.AssertExpectations(t)
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		from, size    int
		offset, limit int
	}{
		{0, 20, 0, 20},
		{7, 3, 6, 3},
		{5, 5, 5, 5},
		{19, 20, 0, 20},
		{20, 20, 20, 20},
	}
	for _, tc := range cases {
		offset, limit, err := pageWindow(tc.from, tc.size)
		require.NoError(t, err)
		assert.Equal(t, tc.offset, offset)
		assert.Equal(t, tc.limit, limit)
	}

	_, _, err := pageWindow(-1, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)
	_, _, err = pageWindow(0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)
}
