package worker

import "time"

// SyncBackoff paces retries of failed sheet writes: BaseDelay grows by
// Factor per attempt until CapDelay. The zero value retries five times,
// starting at two seconds and doubling up to one minute.
type SyncBackoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	CapDelay    time.Duration
	Factor      float64
}

func (b SyncBackoff) withDefaults() SyncBackoff {
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = 5
	}
	if b.BaseDelay <= 0 {
		b.BaseDelay = 2 * time.Second
	}
	if b.CapDelay <= 0 {
		b.CapDelay = time.Minute
	}
	if b.Factor <= 0 {
		b.Factor = 2
	}
	return b
}

// DelayFor returns the wait after the given attempt (1-based). Attempts
// below one wait the base delay.
func (b SyncBackoff) DelayFor(attempt int) time.Duration {
	b = b.withDefaults()
	delay := b.BaseDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * b.Factor)
		if delay >= b.CapDelay {
			return b.CapDelay
		}
	}
	return delay
}
