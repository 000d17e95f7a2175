package ranking

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orestes-garcia-martinez/careerclaw/internal/gap"
	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/logger"
	"github.com/orestes-garcia-martinez/careerclaw/internal/requirements"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
)

const defaultWorkers = 4

// Ranked is one scored job. Index is the job's position in the fetched batch.
type Ranked struct {
	Job          jobs.Job         `json:"job"`
	Index        int              `json:"-"`
	Breakdown    Breakdown        `json:"breakdown"`
	Analysis     gap.Analysis     `json:"analysis"`
	Requirements requirements.Set `json:"-"`
}

// Score is the composite score.
func (r Ranked) Score() float64 { return r.Breakdown.Composite }

// Ranker scores a batch of jobs against one profile and resume.
type Ranker struct {
	profile   *jobs.Profile
	intel     *resume.Intelligence
	extractor *requirements.Extractor
	analyzer  gap.Analyzer
	weights   Weights
	workers   int
	logger    *zap.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithWorkers bounds the number of jobs scored concurrently.
func WithWorkers(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithWeights overrides the composite weights.
func WithWeights(w Weights) Option {
	return func(r *Ranker) { r.weights = w }
}

// WithExtractor overrides the requirement extractor.
func WithExtractor(e *requirements.Extractor) Option {
	return func(r *Ranker) { r.extractor = e }
}

// New returns a Ranker. intel is built once per (resume, profile) pair by the caller.
func New(profile *jobs.Profile, intel *resume.Intelligence, log *zap.Logger, opts ...Option) *Ranker {
	r := &Ranker{
		profile:  profile,
		intel:    intel,
		analyzer: gap.NewAnalyzer(),
		weights:  DefaultWeights,
		workers:  defaultWorkers,
		logger:   logger.WithFields(log),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.extractor == nil {
		r.extractor = requirements.New(textsignal.DefaultPolicy())
	}
	return r
}

// Rank scores every job and returns them ordered by composite score, highest
// first, with ties kept in fetch order. Jobs that fail validation are skipped
// and returned as errors; they never abort the batch.
func (r *Ranker) Rank(ctx context.Context, batch []jobs.Job) ([]Ranked, []error, error) {
	if err := r.profile.Validate(); err != nil {
		return nil, nil, err
	}

	scored := make([]*Ranked, len(batch))
	rejected := make([]error, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			job := batch[i]
			if err := job.Validate(); err != nil {
				rejected[i] = err
				return nil
			}
			ranked := r.score(job)
			ranked.Index = i
			scored[i] = &ranked
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]Ranked, 0, len(batch))
	var errs []error
	for i := range batch {
		if rejected[i] != nil {
			r.logger.Warn("skipping job", logger.JobFields(batch[i].ID, batch[i].Title, zap.Error(rejected[i]))...)
			errs = append(errs, rejected[i])
			continue
		}
		out = append(out, *scored[i])
	}

	Sort(out)
	return out, errs, nil
}

func (r *Ranker) score(job jobs.Job) Ranked {
	req := r.extractor.Extract(&job)
	analysis := r.analyzer.Analyze(r.intel, req)
	return Ranked{
		Job:          job,
		Breakdown:    r.weights.scoreWith(&job, r.profile, &analysis, req),
		Analysis:     analysis,
		Requirements: req,
	}
}

// Sort orders by composite score descending, then by Index.
func Sort(items []Ranked) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Breakdown.Composite != items[b].Breakdown.Composite {
			return items[a].Breakdown.Composite > items[b].Breakdown.Composite
		}
		return items[a].Index < items[b].Index
	})
}

// Top returns at most k items. k <= 0 returns everything.
func Top(items []Ranked, k int) []Ranked {
	if k <= 0 || k >= len(items) {
		return items
	}
	return items[:k]
}
