package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverLimiter prefers the shared primary limiter and drops to the
// in-process fallback while the primary is unreachable. It retries the
// primary once per recovery interval.
type FailoverLimiter struct {
	primary  Limiter
	fallback Limiter
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverLimiter(primary, fallback Limiter, logger *zerolog.Logger) *FailoverLimiter {
	return &FailoverLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (l *FailoverLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.isDown.Load() {
		allowed, err := l.primary.Allow(ctx, key)
		if err == nil {
			return allowed, nil
		}
		l.logger.Error().Err(err).Msg("Primary rate limiter failed, falling back to memory")
		l.markDown()
	}

	if l.shouldRetryPrimary() {
		allowed, err := l.primary.Allow(ctx, key)
		if err == nil {
			l.isDown.Store(false)
			return allowed, nil
		}
	}

	return l.fallback.Allow(ctx, key)
}

func (l *FailoverLimiter) markDown() {
	l.isDown.Store(true)
	l.mu.Lock()
	l.lastCheck = time.Now()
	l.mu.Unlock()
}

func (l *FailoverLimiter) shouldRetryPrimary() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastCheck) < recoveryInterval {
		return false
	}
	l.lastCheck = time.Now()
	return true
}
