package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(clock *fakeClock, interval, cooldown time.Duration) *RateLimiter {
	l := NewRateLimiter(interval, cooldown)
	l.now = clock.Now
	return l
}

func TestRateLimiter_MinInterval(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock, 2*time.Second, time.Minute)

	require.True(t, l.MayProceed())
	clock.Advance(time.Second)
	require.False(t, l.MayProceed())
	clock.Advance(1100 * time.Millisecond)
	require.True(t, l.MayProceed())
	require.False(t, l.MayProceed())
}

func TestRateLimiter_RecordRequestConsumesSlot(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock, 2*time.Second, time.Minute)

	l.RecordRequest()
	require.False(t, l.MayProceed())
	clock.Advance(2 * time.Second)
	require.True(t, l.MayProceed())
}

func TestRateLimiter_QuotaCooldown(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock, time.Second, 60*time.Second)

	l.RecordQuotaExceeded(0)
	require.True(t, l.QuotaExceeded())
	require.Equal(t, 60, l.RemainingQuotaWait())
	require.False(t, l.MayProceed())

	clock.Advance(45500 * time.Millisecond)
	require.Equal(t, 14, l.RemainingQuotaWait())
	require.False(t, l.MayProceed())

	clock.Advance(15 * time.Second)
	require.Equal(t, 0, l.RemainingQuotaWait())
	require.False(t, l.QuotaExceeded())
	require.True(t, l.MayProceed())
}

func TestRateLimiter_ExplicitRetryAfter(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock, time.Second, time.Minute)

	l.RecordQuotaExceeded(10 * time.Second)
	require.Equal(t, 10, l.RemainingQuotaWait())
	clock.Advance(10 * time.Second)
	require.True(t, l.MayProceed())
}

func TestRateLimiter_ZeroIntervalAlwaysAllows(t *testing.T) {
	l := NewRateLimiter(0, 0)
	require.Equal(t, DefaultQuotaCooldown, l.Cooldown())
	for range 5 {
		require.True(t, l.MayProceed())
	}
}
