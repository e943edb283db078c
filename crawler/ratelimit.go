package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PolitenessGate enforces a minimum delay between requests to the same
// origin. Unlike the broken-link checker's global adaptive rate limiter,
// politeness here is a per-origin fixed delay: each origin gets its own
// golang.org/x/time/rate.Limiter built lazily on first use, with a burst
// of 1 so a caller always waits out the full delay before a second request
// to that origin proceeds.
type PolitenessGate struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPolitenessGate creates an empty PolitenessGate.
func NewPolitenessGate() *PolitenessGate {
	return &PolitenessGate{limiters: make(map[string]*rate.Limiter)}
}

// Wait blocks until a request to origin may proceed under delay, or until
// ctx is cancelled. A delay of 0 never blocks.
func (g *PolitenessGate) Wait(ctx context.Context, origin string, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	return g.limiterFor(origin, delay).Wait(ctx)
}

func (g *PolitenessGate) limiterFor(origin string, delay time.Duration) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	if l, ok := g.limiters[origin]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(delay), 1)
	g.limiters[origin] = l
	return l
}
