package enhance

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const outcomeSuccess = "success"

// Metrics records enhancer activity per candidate. A nil *Metrics records
// nothing.
type Metrics struct {
	Attempts     *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	BreakerState *prometheus.GaugeVec
	Fallbacks    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerclaw_llm_attempts_total",
				Help: "Enhancement attempts by provider, model and outcome",
			},
			[]string{"provider", "model", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "careerclaw_llm_attempt_duration_seconds",
				Help:    "Enhancement attempt duration in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"provider", "model"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "careerclaw_llm_breaker_state",
				Help: "Circuit state per candidate (0 closed, 1 open, 2 half-open)",
			},
			[]string{"provider", "model"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerclaw_llm_fallbacks_total",
				Help: "Drafts returned without enhancement by reason",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Attempts, m.Duration, m.BreakerState, m.Fallbacks)
	}
	return m
}

func (m *Metrics) attempt(c Candidate, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(c.Provider, c.Model, outcome).Inc()
	m.Duration.WithLabelValues(c.Provider, c.Model).Observe(elapsed.Seconds())
}

func (m *Metrics) state(c Candidate, s State) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(c.Provider, c.Model).Set(float64(s))
}

func (m *Metrics) fallback(reason Reason) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(string(reason)).Inc()
}
