package ratelimit

import "context"

// Limiter answers whether a caller identified by key may make one more
// request right now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
