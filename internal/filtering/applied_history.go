package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/tracking"
)

// Statuses that mean the user is done with a job. Saved jobs stay visible.
var settledStatuses = []tracking.Status{tracking.StatusApplied, tracking.StatusInterview, tracking.StatusRejected}

type trackedFilter struct {
	disabled bool
	reason   string
}

// NewTracked creates a filter that removes jobs already applied to,
// interviewing or rejected.
func NewTracked() Filter {
	return &trackedFilter{}
}

func (f *trackedFilter) Name() string { return "tracked" }

func (f *trackedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *trackedFilter) IsEnabled() bool { return !f.disabled }

func (f *trackedFilter) Validate(cfg *Config) error {
	if cfg != nil && cfg.KeepTracked {
		f.Disable("keep-tracked is set")
	}
	return nil
}

func (f *trackedFilter) Apply(_ context.Context, deps Deps, l *jobs.List) (*jobs.List, Step, error) {
	initial := l.Len()
	if deps.Tracking == nil {
		deps.Logger.Debug("no tracking store; keeping every job")
		return l, unchanged(l), nil
	}

	ids, err := deps.Tracking.IDsWithStatus(settledStatuses...)
	if err != nil {
		return l, Step{}, fmt.Errorf("loading tracked jobs: %w", err)
	}

	excluded := l.Exclude(jobs.IDField, ids)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding already tracked jobs",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(excluded), Left: l.Len()}, nil
}

func (f *trackedFilter) Status() Status {
	details := map[string]string{
		"exclude_tracked": strconv.FormatBool(!f.disabled),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
