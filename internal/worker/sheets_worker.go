package worker

import (
	"context"
	"errors"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// SheetsClient is the slice of the Google Sheets service the worker uses.
type SheetsClient interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
}

// SheetsWorker mirrors booking snapshots to a spreadsheet in the background.
// Implements domain.SyncWorker; a full queue drops the task rather than
// blocking the request that produced it.
type SheetsWorker struct {
	sheets  SheetsClient
	backoff SyncBackoff
	queue   chan *models.Booking
	logger  *zerolog.Logger
}

func NewSheetsWorker(sheets SheetsClient, backoff SyncBackoff, logger *zerolog.Logger) *SheetsWorker {
	return &SheetsWorker{
		sheets:  sheets,
		backoff: backoff.withDefaults(),
		queue:   make(chan *models.Booking, models.WorkerQueueSize),
		logger:  logger,
	}
}

// EnqueueBooking schedules one booking snapshot for sync.
func (w *SheetsWorker) EnqueueBooking(_ context.Context, booking *models.Booking) error {
	if booking == nil || booking.ID == 0 {
		return errors.New("booking id is required")
	}

	snapshot := *booking
	select {
	case w.queue <- &snapshot:
		return nil
	default:
		return errors.New("sync queue is full")
	}
}

// Run consumes the queue until ctx is cancelled.
func (w *SheetsWorker) Run(ctx context.Context) {
	w.logger.Info().Msg("sheets sync worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("sheets sync worker stopped")
			return
		case booking := <-w.queue:
			w.process(ctx, booking)
		}
	}
}

func (w *SheetsWorker) process(ctx context.Context, booking *models.Booking) {
	var lastErr error
	for attempt := 1; attempt <= w.backoff.MaxAttempts; attempt++ {
		lastErr = w.sheets.UpsertBooking(ctx, booking)
		if lastErr == nil {
			return
		}

		w.logger.Warn().
			Err(lastErr).
			Int64("booking_id", booking.ID).
			Int("attempt", attempt).
			Msg("sheets sync attempt failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff.DelayFor(attempt)):
		}
	}

	w.logger.Error().
		Err(lastErr).
		Int64("booking_id", booking.ID).
		Msg("sheets sync gave up, dropping task")
}
