package bus

import (
	"context"
	"math"
	"time"

	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
)

// Backoff controls how Poll spaces its attempts.
type Backoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultBackoff starts at 100µs and caps at 50ms.
func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: 100 * time.Microsecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   2,
	}
}

// Delay returns the wait before attempt N (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 1 || b.InitialDelay <= 0 {
		return b.InitialDelay
	}
	mult := b.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	delay := float64(b.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if b.MaxDelay > 0 && delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}
	return time.Duration(delay)
}

// Poll waits for a message by retrying Remove with backoff until one arrives
// or ctx is done. It is a convenience layered on Remove; producers are never
// involved.
func (q *Queue) Poll(ctx context.Context, backoff Backoff) (protocol.Message, error) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for attempt := 1; ; attempt++ {
		if m, ok := q.Remove(); ok {
			return m, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		delay := backoff.Delay(attempt)
		if timer == nil {
			timer = time.NewTimer(delay)
		} else {
			timer.Reset(delay)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
