// Package filtering narrows a fetched batch of jobs before ranking.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/tracking"
)

// Filter represents a single filtering step applied to jobs.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, l *jobs.List) (*jobs.List, Step, error)
}

// TrackedStore lists the ids of tracked jobs by status.
type TrackedStore interface {
	IDsWithStatus(statuses ...tracking.Status) ([]string, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Tracking TrackedStore
	Logger   *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int `json:"initial"`
	Dropped int `json:"dropped"`
	Left    int `json:"left"`
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	Companies   []string `mapstructure:"companies"`
	ExcludeFile string   `mapstructure:"exclude-file"`
	// KeepTracked disables the tracked filter.
	KeepTracked bool `mapstructure:"keep-tracked"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	Step    *Step             `json:"step,omitempty"`
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the standard pipeline in order.
func Default() []Filter {
	return []Filter{NewDedupe(), NewExcludedCompanies(), NewTracked(), NewExcludeFile()}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the remaining
// jobs with the counters of every executed step.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, l *jobs.List) (*jobs.List, map[string]Step, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	counters := make(map[string]Step, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if !step.IsEnabled() {
			deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, l)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		counters[step.Name()] = info
		l = next
	}

	return l, counters, nil
}

// Describe returns status entries for the provided filters, with the step
// counters of the last run when counters is not nil.
func Describe(steps []Filter, counters map[string]Step) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		var status Status
		if reporter, ok := step.(statusProvider); ok {
			status = reporter.Status()
		} else {
			status = Status{Name: step.Name(), Enabled: step.IsEnabled()}
		}
		if info, ok := counters[step.Name()]; ok {
			info := info
			status.Step = &info
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func unchanged(l *jobs.List) Step {
	return Step{Initial: l.Len(), Dropped: 0, Left: l.Len()}
}
