package pricing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultSlot is the pacing granularity shared by all callers.
const DefaultSlot = 50 * time.Millisecond

// Pacer enforces a minimum spacing between consecutive external calls across
// the whole process. A call paced at spacing s reserves ceil(s/slot)
// consecutive slots, so it runs at least s after the previous call.
type Pacer struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	slot    time.Duration
}

// NewPacer creates a pacer with the given slot length.
func NewPacer(slot time.Duration) *Pacer {
	if slot <= 0 {
		slot = DefaultSlot
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(slot), 1),
		slot:    slot,
	}
}

// Slot returns the pacing granularity.
func (p *Pacer) Slot() time.Duration {
	return p.slot
}

// Pace blocks until the caller may issue its next external call. Slots are
// reserved under a lock so concurrent callers can never share a slot.
func (p *Pacer) Pace(ctx context.Context, spacing time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := p.slots(spacing)

	p.mu.Lock()
	now := time.Now()
	reservations := make([]*rate.Reservation, n)
	var delay time.Duration
	for i := range reservations {
		reservations[i] = p.limiter.ReserveN(now, 1)
		delay = reservations[i].DelayFrom(now)
	}
	p.mu.Unlock()

	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		for i := len(reservations) - 1; i >= 0; i-- {
			reservations[i].Cancel()
		}
		return ctx.Err()
	}
}

func (p *Pacer) slots(spacing time.Duration) int {
	if spacing <= p.slot {
		return 1
	}
	n := int(spacing / p.slot)
	if spacing%p.slot != 0 {
		n++
	}
	return n
}
