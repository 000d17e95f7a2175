// Package briefing runs the daily pipeline: fetch, filter, rank, draft and
// optionally enhance the top matches, then record the run.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/drafting"
	"github.com/orestes-garcia-martinez/careerclaw/internal/enhance"
	"github.com/orestes-garcia-martinez/careerclaw/internal/filtering"
	"github.com/orestes-garcia-martinez/careerclaw/internal/gap"
	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/logger"
	"github.com/orestes-garcia-martinez/careerclaw/internal/ranking"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
	"github.com/orestes-garcia-martinez/careerclaw/internal/sources"
	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
	"github.com/orestes-garcia-martinez/careerclaw/internal/tracking"
)

const (
	DefaultTopK   = 3
	DefaultUserID = "local-user"
	summarySize   = 5
)

var errNoStore = errors.New("tracking store is not configured")

// Enhancer improves a deterministic draft. *enhance.Enhancer satisfies it,
// including a nil one.
type Enhancer interface {
	Enhance(ctx context.Context, in enhance.Input) enhance.Result
}

// Store persists tracked jobs and the run log.
type Store interface {
	filtering.TrackedStore
	UpsertSaved(items []jobs.Job) (created, already int, err error)
	RecordRun(run tracking.Run) (tracking.Run, error)
}

// Options control one run.
type Options struct {
	UserID string
	TopK   int
	DryRun bool
	// Timeout bounds the whole run. Jobs reached after it get deterministic
	// drafts. Zero means no deadline.
	Timeout time.Duration
	Filters *filtering.Config
}

// Match is one ranked job with its explanation.
type Match struct {
	Job       jobs.Job          `json:"job"`
	Score     float64           `json:"score"`
	Breakdown ranking.Breakdown `json:"breakdown"`
	Analysis  *gap.Analysis     `json:"analysis,omitempty"`
	Summary   *gap.Summary      `json:"summary,omitempty"`
}

// DraftResult is the final draft of one match.
type DraftResult struct {
	JobID    string            `json:"job_id"`
	Channel  string            `json:"channel"`
	Draft    drafting.Draft    `json:"draft"`
	Text     string            `json:"text"`
	Enhanced bool              `json:"enhanced"`
	Provider string            `json:"provider,omitempty"`
	Model    string            `json:"model,omitempty"`
	Reason   enhance.Reason    `json:"reason,omitempty"`
	Failures []enhance.Failure `json:"failures,omitempty"`
}

// TrackingCounts reports what the run added to tracking.
type TrackingCounts struct {
	Created        int `json:"created"`
	AlreadyPresent int `json:"already_present"`
}

// Result is the structured outcome of a run.
type Result struct {
	UserID         string                    `json:"user_id"`
	RunID          string                    `json:"run_id,omitempty"`
	FetchedJobs    int                       `json:"fetched_jobs"`
	ConsideredJobs int                       `json:"considered_jobs"`
	RejectedJobs   int                       `json:"rejected_jobs"`
	Filters        []filtering.Status        `json:"filters"`
	TopMatches     []Match                   `json:"top_matches"`
	Drafts         []DraftResult             `json:"drafts"`
	Tracking       TrackingCounts            `json:"tracking"`
	DurationMS     int64                     `json:"duration_ms"`
	DryRun         bool                      `json:"dry_run"`
	ResumeSource   resume.Source             `json:"resume_source"`
	Enhancer       []enhance.CandidateStatus `json:"enhancer,omitempty"`
}

// Enhanced counts the enhanced drafts.
func (r *Result) Enhanced() int {
	n := 0
	for _, d := range r.Drafts {
		if d.Enhanced {
			n++
		}
	}
	return n
}

// Orchestrator wires the pipeline together.
type Orchestrator struct {
	sources  []sources.Source
	store    Store
	enhancer Enhancer
	filters  []filtering.Filter
	workers  int
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithStore(s Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

func WithEnhancer(e Enhancer) Option {
	return func(o *Orchestrator) { o.enhancer = e }
}

func WithFilters(f ...filtering.Filter) Option {
	return func(o *Orchestrator) { o.filters = f }
}

func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger.WithFields(l) }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func New(srcs []sources.Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sources: srcs,
		filters: filtering.Default(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one briefing for profile. intel may be nil, in which case it
// is built from the profile alone.
func (o *Orchestrator) Run(ctx context.Context, profile *jobs.Profile, intel *resume.Intelligence, opts Options) (*Result, error) {
	start := o.now()
	opts = normalize(opts)

	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	profile.Normalize()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if intel == nil {
		intel = resume.NewBuilder(textsignal.DefaultPolicy()).Build(resume.InputFromProfile(profile, ""))
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = start.Add(opts.Timeout)
	}

	res := &Result{UserID: opts.UserID, DryRun: opts.DryRun, ResumeSource: intel.Source()}

	fetched, err := sources.FetchAll(ctx, o.logger, o.sources...)
	if err != nil {
		return nil, fmt.Errorf("fetching jobs: %w", err)
	}
	res.FetchedJobs = len(fetched)

	deps := filtering.Deps{Logger: o.logger}
	if o.store != nil {
		deps.Tracking = o.store
	}
	list, counters, err := filtering.Run(ctx, opts.Filters, deps, o.filters, jobs.NewList(fetched...))
	if err != nil {
		return nil, fmt.Errorf("filtering jobs: %w", err)
	}
	res.ConsideredJobs = list.Len()
	res.Filters = filtering.Describe(o.filters, counters)

	ranker := ranking.New(profile, intel, o.logger, ranking.WithWorkers(o.workers))
	ranked, rejected, err := ranker.Rank(ctx, list.Jobs())
	if err != nil {
		return nil, fmt.Errorf("ranking jobs: %w", err)
	}
	res.RejectedJobs = len(rejected)

	top := ranking.Top(ranked, opts.TopK)
	res.TopMatches = make([]Match, 0, len(top))
	res.Drafts = make([]DraftResult, 0, len(top))
	for i := range top {
		m := top[i]
		match := Match{Job: m.Job, Score: m.Score(), Breakdown: m.Breakdown}
		if intel.Len() > 0 {
			analysis := m.Analysis
			summary := analysis.Summarize(summarySize)
			match.Analysis = &analysis
			match.Summary = &summary
		}
		res.TopMatches = append(res.TopMatches, match)

		draft := drafting.Compose(profile, &m.Job)
		outcome := o.enhance(ctx, deadline, enhance.Input{Job: &m.Job, Draft: draft, Analysis: &m.Analysis, Intel: intel})
		res.Drafts = append(res.Drafts, draftResult(outcome))
	}

	if es, ok := o.enhancer.(interface {
		Status() []enhance.CandidateStatus
	}); ok {
		res.Enhancer = es.Status()
	}

	if !opts.DryRun && o.store != nil {
		if err := o.Track(res, opts); err != nil {
			return nil, err
		}
	}

	res.DurationMS = o.now().Sub(start).Milliseconds()
	o.logger.Info("briefing finished",
		zap.Int("fetched", res.FetchedJobs),
		zap.Int("considered", res.ConsideredJobs),
		zap.Int("matches", len(res.TopMatches)),
		zap.Int("enhanced", res.Enhanced()),
		zap.Bool("dry_run", res.DryRun),
	)
	return res, nil
}

// enhance checks the run deadline before handing the draft to the enhancer,
// never during an attempt.
func (o *Orchestrator) enhance(ctx context.Context, deadline time.Time, in enhance.Input) enhance.Result {
	if !deadline.IsZero() && !o.now().Before(deadline) {
		o.logger.Info("run deadline reached; keeping deterministic draft", logger.JobFields(in.Job.ID, in.Job.Title)...)
		return enhance.Fallback(in.Draft, enhance.ReasonDeadline)
	}
	if o.enhancer == nil {
		return enhance.Fallback(in.Draft, enhance.ReasonDisabled)
	}

	out := o.enhancer.Enhance(ctx, in)
	if !out.Enhanced && len(out.Failures) > 0 {
		o.logger.Warn("using deterministic draft",
			logger.JobFields(in.Job.ID, in.Job.Title,
				zap.String("reason", string(out.Reason)),
				zap.Int("failures", len(out.Failures)),
			)...,
		)
	}
	return out
}

// Track saves the top matches of res and records the run. Run calls it unless
// opts.DryRun is set; a dry run can be tracked afterwards by calling it
// directly.
func (o *Orchestrator) Track(res *Result, opts Options) error {
	if o.store == nil {
		return errNoStore
	}
	if res.RunID != "" {
		return fmt.Errorf("run %s is already tracked", res.RunID)
	}
	opts = normalize(opts)

	matched := make([]jobs.Job, 0, len(res.TopMatches))
	for _, m := range res.TopMatches {
		matched = append(matched, m.Job)
	}

	created, already, err := o.store.UpsertSaved(matched)
	if err != nil {
		return fmt.Errorf("saving matches: %w", err)
	}
	res.Tracking = TrackingCounts{Created: created, AlreadyPresent: already}

	run, err := o.store.RecordRun(tracking.Run{
		UserID:         opts.UserID,
		Fetched:        res.FetchedJobs,
		Considered:     res.ConsideredJobs,
		TopK:           opts.TopK,
		Created:        created,
		AlreadyPresent: already,
		Enhanced:       res.Enhanced(),
	})
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	res.RunID = run.RunID
	res.DryRun = false
	return nil
}

func draftResult(r enhance.Result) DraftResult {
	return DraftResult{
		JobID:    r.Draft.JobID,
		Channel:  "email",
		Draft:    r.Draft,
		Text:     r.Draft.Text(),
		Enhanced: r.Enhanced,
		Provider: r.Provider,
		Model:    r.Model,
		Reason:   r.Reason,
		Failures: r.Failures,
	}
}

func normalize(opts Options) Options {
	if opts.UserID == "" {
		opts.UserID = DefaultUserID
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	return opts
}
