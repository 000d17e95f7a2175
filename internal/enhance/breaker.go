package enhance

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// State is the circuit state of one candidate.
type State int

const (
	// Closed allows attempts.
	Closed State = iota
	// Open blocks attempts until the cooldown has elapsed.
	Open
	// HalfOpen allows a single probe attempt.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

func stateOf(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return Open
	case gobreaker.StateHalfOpen:
		return HalfOpen
	default:
		return Closed
	}
}

// Breaker guards one candidate. It opens after threshold consecutive
// failures, stays open for the cooldown and then admits one probe.
type Breaker struct {
	cb *gobreaker.TwoStepCircuitBreaker

	mu       sync.Mutex
	failures int
}

// NewBreaker returns a closed breaker. onChange, when set, sees every state
// transition and must not call back into the breaker.
func NewBreaker(name string, threshold int, cooldown time.Duration, onChange func(from, to State)) *Breaker {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	trip := uint32(threshold)

	return &Breaker{
		cb: gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= trip
			},
			OnStateChange: func(_ string, from, to gobreaker.State) {
				if onChange != nil {
					onChange(stateOf(from), stateOf(to))
				}
			},
		}),
	}
}

// Ticket is one admitted attempt. Exactly one of Succeed, Fail or Abandon
// settles it; later calls are no-ops.
type Ticket struct {
	b     *Breaker
	done  func(success bool)
	probe bool
}

// Allow admits an attempt. An open breaker whose cooldown has elapsed moves
// to half-open and admits exactly one probe until that probe is settled.
func (b *Breaker) Allow() (*Ticket, bool) {
	probe := b.cb.State() == gobreaker.StateHalfOpen
	done, err := b.cb.Allow()
	if err != nil {
		return nil, false
	}
	return &Ticket{b: b, done: done, probe: probe}, true
}

// Succeed closes the breaker and clears the failure count.
func (t *Ticket) Succeed() {
	if t.settle(true) {
		t.b.mu.Lock()
		t.b.failures = 0
		t.b.mu.Unlock()
	}
}

// Fail counts a failure. A failed probe reopens the breaker and restarts the
// cooldown.
func (t *Ticket) Fail() {
	if t.settle(false) {
		t.b.mu.Lock()
		t.b.failures++
		t.b.mu.Unlock()
	}
}

// Abandon settles an attempt that ended for reasons of its own caller, such
// as a cancelled run. Nothing is counted. An abandoned probe reopens the
// breaker so the next request after the cooldown can probe again.
func (t *Ticket) Abandon() {
	if t == nil || t.done == nil {
		return
	}
	if t.probe {
		t.done(false)
	}
	t.done = nil
}

func (t *Ticket) settle(success bool) bool {
	if t == nil || t.done == nil {
		return false
	}
	t.done(success)
	t.done = nil
	return true
}

// State returns the current state. An open breaker whose cooldown has
// elapsed reports half-open.
func (b *Breaker) State() State {
	return stateOf(b.cb.State())
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
