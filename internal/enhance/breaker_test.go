package enhance

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCooldown = 100 * time.Millisecond

func waitHalfOpen(t *testing.T, b *Breaker) {
	t.Helper()
	require.Eventually(t, func() bool { return b.State() == HalfOpen }, time.Second, 5*time.Millisecond)
}

func fail(t *testing.T, b *Breaker) {
	t.Helper()
	ticket, ok := b.Allow()
	require.True(t, ok)
	ticket.Fail()
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewBreaker("test", 3, time.Minute, nil)
	for i := 0; i < 2; i++ {
		fail(t, b)
		assert.Equal(t, Closed, b.State())
	}
	fail(t, b)
	assert.Equal(t, Open, b.State())
	assert.Equal(t, 3, b.Failures())

	_, ok := b.Allow()
	assert.False(t, ok)
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	t.Parallel()

	b := NewBreaker("test", 2, time.Minute, nil)
	fail(t, b)
	ticket, ok := b.Allow()
	require.True(t, ok)
	ticket.Succeed()
	fail(t, b)

	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 1, b.Failures())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	t.Parallel()

	b := NewBreaker("test", 1, testCooldown, nil)
	fail(t, b)
	assert.Equal(t, Open, b.State())

	waitHalfOpen(t, b)
	probe, ok := b.Allow()
	require.True(t, ok, "probe after cooldown")
	_, ok = b.Allow()
	assert.False(t, ok, "only one probe")

	probe.Fail()
	assert.Equal(t, Open, b.State())
	_, ok = b.Allow()
	assert.False(t, ok, "cooldown restarted by failed probe")

	waitHalfOpen(t, b)
	probe, ok = b.Allow()
	require.True(t, ok)
	probe.Succeed()
	assert.Equal(t, Closed, b.State())
	assert.Zero(t, b.Failures())

	_, ok = b.Allow()
	assert.True(t, ok)
}

func TestBreakerAbandonedProbeReopens(t *testing.T) {
	t.Parallel()

	b := NewBreaker("test", 1, testCooldown, nil)
	fail(t, b)

	waitHalfOpen(t, b)
	probe, ok := b.Allow()
	require.True(t, ok)
	probe.Abandon()

	assert.Equal(t, Open, b.State())
	assert.Equal(t, 1, b.Failures(), "abandoning counts nothing")

	waitHalfOpen(t, b)
	probe, ok = b.Allow()
	require.True(t, ok, "a new probe is admitted after the cooldown")
	probe.Succeed()
	assert.Equal(t, Closed, b.State())
}

func TestBreakerAbandonWhileClosedChangesNothing(t *testing.T) {
	t.Parallel()

	b := NewBreaker("test", 2, time.Minute, nil)
	fail(t, b)

	ticket, ok := b.Allow()
	require.True(t, ok)
	ticket.Abandon()
	ticket.Fail()

	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 1, b.Failures())
}

func TestBreakerReportsTransitions(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []string
	)
	b := NewBreaker("test", 1, testCooldown, func(from, to State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, from.String()+">"+to.String())
	})

	fail(t, b)
	waitHalfOpen(t, b)
	probe, ok := b.Allow()
	require.True(t, ok)
	probe.Succeed()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"closed>open", "open>half_open", "half_open>closed"}, seen)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half_open", HalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
