package clock

import "time"

// Clock supplies the current time to services. Every operation that compares
// bookings against "now" captures it once per call through this interface.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System returns a clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

type fixedClock struct {
	now time.Time
}

// Fixed returns a clock pinned to one instant, for tests.
func Fixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
