// Package enhance rewrites deterministic drafts through an ordered failover
// chain of LLM providers, each guarded by a circuit breaker.
package enhance

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/ai"
	"github.com/orestes-garcia-martinez/careerclaw/internal/ai/providers"
	"github.com/orestes-garcia-martinez/careerclaw/internal/drafting"
	"github.com/orestes-garcia-martinez/careerclaw/internal/gap"
	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/logger"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
	"github.com/orestes-garcia-martinez/careerclaw/internal/secrets"
	"github.com/orestes-garcia-martinez/careerclaw/internal/utils"
)

// previewLength bounds the rejected response text written to debug logs.
const previewLength = 200

// Reason explains why a draft was returned without enhancement.
type Reason string

const (
	ReasonDisabled      Reason = "disabled"
	ReasonNoChain       Reason = "no_chain"
	ReasonNoCredentials Reason = "no_credentials"
	ReasonBreakerOpen   Reason = "breaker_open"
	ReasonExhausted     Reason = "exhausted"
	ReasonCancelled     Reason = "cancelled"
	ReasonDeadline      Reason = "deadline"
)

// Failure is one failed attempt. Message is redacted.
type Failure struct {
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Attempt  int     `json:"attempt"`
	Kind     ai.Kind `json:"kind"`
	Message  string  `json:"message"`
}

// Result is the outcome of one enhancement request. When Enhanced is false,
// Draft is the deterministic draft unchanged and Reason says why.
type Result struct {
	Draft    drafting.Draft `json:"draft"`
	Enhanced bool           `json:"enhanced"`
	Provider string         `json:"provider,omitempty"`
	Model    string         `json:"model,omitempty"`
	Reason   Reason         `json:"reason,omitempty"`
	Failures []Failure      `json:"failures,omitempty"`
}

// Fallback returns d unmodified and flagged as not enhanced.
func Fallback(d drafting.Draft, reason Reason) Result {
	return Result{Draft: d, Reason: reason}
}

// Input is everything one request needs.
type Input struct {
	Job      *jobs.Job
	Draft    drafting.Draft
	Analysis *gap.Analysis
	Intel    *resume.Intelligence
}

// Keys maps a provider name to its API key.
type Keys map[string]string

// Factory builds the generator of a candidate.
type Factory func(ctx context.Context, c Candidate, key string) (ai.Generator, error)

// DefaultFactory builds the real provider clients.
func DefaultFactory(ctx context.Context, c Candidate, key string) (ai.Generator, error) {
	return providers.New(ctx, c.Provider, key, c.Model)
}

// CandidateStatus is a snapshot of one candidate's breaker.
type CandidateStatus struct {
	Candidate Candidate `json:"candidate"`
	State     string    `json:"state"`
	Failures  int       `json:"failures"`
}

type candidateState struct {
	// mu serialises attempts so breaker updates for one candidate are ordered.
	mu        sync.Mutex
	candidate Candidate
	breaker   *Breaker
	gen       ai.Generator
}

func (st *candidateState) generator(ctx context.Context, factory Factory, key string) (ai.Generator, error) {
	if st.gen != nil {
		return st.gen, nil
	}
	g, err := factory(ctx, st.candidate, key)
	if err != nil {
		return nil, err
	}
	st.gen = g
	return g, nil
}

// Enhancer owns the breaker state of every candidate for the process lifetime.
// It is safe for concurrent use.
type Enhancer struct {
	cfg      Config
	keys     Keys
	factory  Factory
	metrics  *Metrics
	logger   *zap.Logger
	redactor *secrets.Redactor
	states   []*candidateState
}

// Option configures an Enhancer.
type Option func(*Enhancer)

// WithFactory replaces the provider factory.
func WithFactory(f Factory) Option {
	return func(e *Enhancer) {
		if f != nil {
			e.factory = f
		}
	}
}

// WithMetrics records attempts and breaker state.
func WithMetrics(m *Metrics) Option {
	return func(e *Enhancer) { e.metrics = m }
}

// WithLogger sets the logger. Messages are redacted before they reach it.
func WithLogger(l *zap.Logger) Option {
	return func(e *Enhancer) { e.logger = logger.WithFields(l) }
}

// New returns an Enhancer for cfg.Chain. Duplicate candidates share one
// breaker.
func New(cfg Config, keys Keys, opts ...Option) *Enhancer {
	e := &Enhancer{
		cfg:     cfg.Normalize(),
		keys:    Keys{},
		factory: DefaultFactory,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.redactor = secrets.NewRedactor()
	for provider, key := range keys {
		key = strings.TrimSpace(key)
		e.keys[strings.ToLower(provider)] = key
		e.redactor.Add(key)
	}

	seen := make(map[Candidate]struct{}, len(e.cfg.Chain))
	for _, c := range e.cfg.Chain {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		e.states = append(e.states, &candidateState{
			candidate: c,
			breaker:   NewBreaker(c.String(), e.cfg.BreakerThreshold, e.cfg.Cooldown, e.onStateChange(c)),
		})
		e.metrics.state(c, Closed)
	}
	return e
}

// Enabled reports whether at least one candidate has credentials.
func (e *Enhancer) Enabled() bool {
	if e == nil {
		return false
	}
	for _, st := range e.states {
		if e.keys[st.candidate.Provider] != "" {
			return true
		}
	}
	return false
}

// Status returns the breaker state of every candidate in chain order.
func (e *Enhancer) Status() []CandidateStatus {
	if e == nil {
		return nil
	}
	out := make([]CandidateStatus, 0, len(e.states))
	for _, st := range e.states {
		out = append(out, CandidateStatus{
			Candidate: st.candidate,
			State:     st.breaker.State().String(),
			Failures:  st.breaker.Failures(),
		})
	}
	return out
}

// Redact removes configured keys from s.
func (e *Enhancer) Redact(s string) string {
	if e == nil {
		return secrets.NewRedactor().Redact(s)
	}
	return e.redactor.Redact(s)
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeSkipped
	outcomeEnhanced
	outcomeCancelled
)

// Enhance walks the chain in order and returns the first valid enhancement.
// Provider errors never escape; they are recorded in Result.Failures.
func (e *Enhancer) Enhance(ctx context.Context, in Input) Result {
	if e == nil {
		return Fallback(in.Draft, ReasonDisabled)
	}
	if len(e.states) == 0 {
		return e.fallback(in.Draft, ReasonNoChain, nil)
	}
	if in.Job == nil {
		in.Job = &jobs.Job{ID: in.Draft.JobID}
	}

	req := ai.Request{
		System:    SystemPrompt(),
		Prompt:    BuildPrompt(in.Job, in.Analysis, in.Intel),
		MaxTokens: e.cfg.MaxTokens,
	}

	var failures []Failure
	credentialed, attempted := 0, 0
	for _, st := range e.states {
		if ctx.Err() != nil {
			return e.fallback(in.Draft, ReasonCancelled, failures)
		}

		key := e.keys[st.candidate.Provider]
		if key == "" {
			e.logger.Debug("skipping candidate without credentials", logger.CandidateFields(st.candidate.Provider, st.candidate.Model)...)
			continue
		}
		credentialed++

		body, fs, out := e.try(ctx, st, key, req, in.Job)
		failures = append(failures, fs...)
		switch out {
		case outcomeEnhanced:
			return Result{
				Draft:    in.Draft.WithBody(body),
				Enhanced: true,
				Provider: st.candidate.Provider,
				Model:    st.candidate.Model,
				Failures: failures,
			}
		case outcomeCancelled:
			return e.fallback(in.Draft, ReasonCancelled, failures)
		case outcomeSkipped:
			continue
		default:
			attempted++
		}
	}

	switch {
	case credentialed == 0:
		return e.fallback(in.Draft, ReasonNoCredentials, failures)
	case attempted == 0:
		return e.fallback(in.Draft, ReasonBreakerOpen, failures)
	default:
		return e.fallback(in.Draft, ReasonExhausted, failures)
	}
}

func (e *Enhancer) try(ctx context.Context, st *candidateState, key string, req ai.Request, job *jobs.Job) (string, []Failure, outcome) {
	st.mu.Lock()
	defer st.mu.Unlock()

	c := st.candidate
	log := logger.WithFields(logger.WithCandidateFields(e.logger, c.Provider, c.Model), logger.JobFields(job.ID, job.Title)...)

	ticket, ok := st.breaker.Allow()
	if !ok {
		log.Debug("candidate circuit is open")
		return "", nil, outcomeSkipped
	}

	gen, err := st.generator(ctx, e.factory, key)
	if err != nil {
		if ctx.Err() != nil {
			ticket.Abandon()
			return "", nil, outcomeCancelled
		}
		ticket.Fail()
		f := e.failure(c, 1, err)
		log.Warn("building llm client failed", zap.String("error", f.Message))
		return "", []Failure{f}, outcomeFailed
	}

	var failures []Failure
	bo := e.newBackOff()
	attempts := e.cfg.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		raw, err := e.call(ctx, gen, req)
		text := ""
		if err == nil {
			text, err = e.validate(c.Provider, raw)
		}
		elapsed := time.Since(start)

		if err == nil {
			ticket.Succeed()
			e.metrics.attempt(c, outcomeSuccess, elapsed)
			log.Info("draft enhanced", zap.Int("attempt", attempt), zap.Duration("elapsed", elapsed))
			return text, failures, outcomeEnhanced
		}

		// A cancelled run is not the candidate's fault.
		if ctx.Err() != nil {
			ticket.Abandon()
			return "", failures, outcomeCancelled
		}

		ticket.Fail()
		f := e.failure(c, attempt, err)
		failures = append(failures, f)
		e.metrics.attempt(c, string(f.Kind), elapsed)
		log.Warn("enhancement attempt failed",
			zap.Int("attempt", attempt),
			zap.String("kind", string(f.Kind)),
			zap.String("error", f.Message),
			zap.String("breaker", st.breaker.State().String()),
		)
		if raw != "" {
			// Redact first so truncation cannot split a key.
			log.Debug("rejected response", zap.String("preview", utils.TruncateForLog(e.redactor.Redact(raw), previewLength)))
		}

		var aerr *ai.Error
		if errors.As(err, &aerr) && !aerr.Retryable() {
			break
		}
		if st.breaker.State() != Closed || attempt == attempts {
			break
		}
		d := bo.NextBackOff()
		if d == backoff.Stop {
			break
		}
		if err := utils.WaitFor(ctx, d); err != nil {
			return "", failures, outcomeCancelled
		}
		if ticket, ok = st.breaker.Allow(); !ok {
			break
		}
	}
	return "", failures, outcomeFailed
}

// call bounds one attempt with the hard timeout, even when the provider
// ignores its context.
func (e *Enhancer) call(ctx context.Context, gen ai.Generator, req ai.Request) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := gen.Generate(cctx, req)
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return "", &ai.Error{Kind: ai.KindTimeout, Provider: gen.Provider(), Err: r.err}
		}
		return r.text, r.err
	case <-cctx.Done():
		if err := ctx.Err(); err != nil {
			return "", ai.Wrap(gen.Provider(), err)
		}
		return "", &ai.Error{Kind: ai.KindTimeout, Provider: gen.Provider(), Err: cctx.Err()}
	}
}

// validate strips a subject line the model may have added and enforces the
// word bounds.
func (e *Enhancer) validate(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if first, rest, ok := strings.Cut(text, "\n"); ok && strings.HasPrefix(strings.ToLower(strings.TrimSpace(first)), "subject:") {
		text = strings.TrimSpace(rest)
	}
	if text == "" {
		return "", &ai.Error{Kind: ai.KindMalformed, Provider: provider, Err: ai.ErrEmptyResponse}
	}
	if n := utils.WordCount(text); n < e.cfg.MinWords || n > e.cfg.MaxWords {
		return "", &ai.Error{Kind: ai.KindLength, Provider: provider}
	}
	return text, nil
}

func (e *Enhancer) newBackOff() backoff.BackOff {
	if e.cfg.RetryInterval < 0 {
		return &backoff.ZeroBackOff{}
	}
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = e.cfg.RetryInterval
	expo.MaxInterval = 8 * e.cfg.RetryInterval
	expo.MaxElapsedTime = 0
	expo.Reset()
	return expo
}

func (e *Enhancer) onStateChange(c Candidate) func(from, to State) {
	return func(from, to State) {
		e.metrics.state(c, to)
		logger.WithCandidateFields(e.logger, c.Provider, c.Model).Info("circuit state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
}

func (e *Enhancer) failure(c Candidate, attempt int, err error) Failure {
	return Failure{
		Provider: c.Provider,
		Model:    c.Model,
		Attempt:  attempt,
		Kind:     ai.KindOf(err),
		Message:  e.redactor.RedactError(err),
	}
}

func (e *Enhancer) fallback(d drafting.Draft, reason Reason, failures []Failure) Result {
	e.metrics.fallback(reason)
	r := Fallback(d, reason)
	r.Failures = failures
	return r
}
