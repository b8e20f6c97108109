package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/clock"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/export"
	"shareit/internal/google"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/notify"
	"shareit/internal/service"
	"shareit/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := baseLogger.With().Str("component", "server").Logger()

	metrics.Register()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sysClock := clock.System()
	eventBus := events.NewEventBus()

	syncWorker, err := startSheetsWorker(ctx, cfg, &logger)
	if err != nil {
		return err
	}

	bookingService := service.NewBookingService(db, db, db, eventBus, syncWorker, sysClock, &logger)
	userService := service.NewUserService(db, &logger)
	itemService := service.NewItemService(db, db, db, db, db, sysClock, &logger)
	requestService := service.NewRequestService(db, db, db, &logger)
	exporter := export.NewService(db, db, db, sysClock, &logger)

	if cfg.Telegram.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, db, &logger)
		if err != nil {
			return err
		}
		notifier.Register(eventBus)
		logger.Info().Msg("telegram notifications enabled")
	}

	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewServer(cfg.Server, userService, itemService, bookingService, requestService, exporter, &logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// startSheetsWorker wires the optional Google Sheets mirror. Returns nil
// when not configured; the booking service treats a nil worker as disabled.
func startSheetsWorker(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.SyncWorker, error) {
	if cfg.Google.CredentialsFile == "" {
		return nil, nil
	}

	sheets, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadsheetID)
	if err != nil {
		return nil, err
	}
	if err := sheets.TestConnection(ctx); err != nil {
		return nil, err
	}

	w := worker.NewSheetsWorker(sheets, worker.SyncBackoff{}, logger)
	go w.Run(ctx)
	logger.Info().Str("spreadsheet", cfg.Google.BookingsSpreadsheetID).Msg("sheets sync worker enabled")
	return w, nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
