package inbox

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultBurst is the number of arrivals a throttle lets through at once.
const DefaultBurst = 1

// Throttle bounds how fast arrivals are handed to the pipeline.
// It uses a token bucket; a zero or negative rate disables throttling.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a throttle allowing perSecond arrivals per second.
func NewThrottle(perSecond float64, burst int) *Throttle {
	if burst < 1 {
		burst = DefaultBurst
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Throttle{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until the next arrival may be processed.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Unlimited returns true if the throttle never delays.
func (t *Throttle) Unlimited() bool {
	return t.limiter.Limit() == rate.Inf
}
