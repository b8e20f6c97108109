package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/ratelimit"

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
	logger := baseLogger.With().Str("component", "gateway").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := buildLimiter(ctx, cfg, &logger)

	server := gateway.NewServer(cfg.Gateway, limiter, &logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("gateway server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildLimiter prefers the shared Redis window with in-memory failover and
// drops to plain in-memory buckets when Redis is not configured.
func buildLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) ratelimit.Limiter {
	memory := ratelimit.NewMemoryLimiter(cfg.Gateway.RateLimit)
	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, using in-memory rate limiter")
		return memory
	}

	client := ratelimit.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := ratelimit.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable at startup, failover will recover it")
	}

	primary := ratelimit.NewRedisLimiter(client, cfg.Gateway.RateLimit)
	return ratelimit.NewFailoverLimiter(primary, memory, logger)
}
