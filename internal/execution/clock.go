package execution

import (
	"context"
	"time"

	"github.com/xkilldash9x/visor-cli/api/schemas"
)

// SystemClock is the production Clock: real time, context-aware sleeping.
type SystemClock struct{}

// NewSystemClock creates the real-time clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now implements schemas.Clock.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// Wait implements schemas.Clock. It returns the context error when the
// context is cancelled before the delay elapses, making every configured
// pause a legitimate cancellation point.
func (c *SystemClock) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ schemas.Clock = (*SystemClock)(nil)
