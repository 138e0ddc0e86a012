package llm

import (
	"context"
	"sync"
	"time"
)

const defaultMinInterval = 2 * time.Second

// Throttle enforces a minimum spacing between consecutive service calls.
// Callers reserve the next free slot under the lock and then sleep outside it,
// so concurrent callers queue up one interval apart.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
	now      func() time.Time
	wait     func(context.Context, time.Duration) error
}

// NewThrottle builds a throttle with the given interval. Zero disables pacing.
func NewThrottle(interval time.Duration) *Throttle {
	if interval < 0 {
		interval = 0
	}
	return &Throttle{interval: interval, now: time.Now, wait: sleepContext}
}

var (
	processThrottleOnce sync.Once
	processThrottle     *Throttle
)

// ProcessThrottle returns the throttle shared by every client in the process.
func ProcessThrottle() *Throttle {
	processThrottleOnce.Do(func() {
		processThrottle = NewThrottle(defaultMinInterval)
	})
	return processThrottle
}

// SetInterval changes the spacing applied to subsequent reservations.
func (t *Throttle) SetInterval(interval time.Duration) {
	if interval < 0 {
		interval = 0
	}
	t.mu.Lock()
	t.interval = interval
	t.mu.Unlock()
}

// Wait blocks until the caller's reserved slot arrives.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	delay := t.reserve()
	if delay <= 0 {
		return ctx.Err()
	}
	return t.wait(ctx, delay)
}

func (t *Throttle) reserve() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	slot := now
	if t.next.After(now) {
		slot = t.next
	}
	t.next = slot.Add(t.interval)
	return slot.Sub(now)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
