package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

type dedupeFilter struct{}

// NewDedupe creates a filter that keeps the first job of every id.
func NewDedupe() Filter {
	return &dedupeFilter{}
}

func (f *dedupeFilter) Name() string { return "dedupe" }

func (f *dedupeFilter) Disable(string) {}

func (f *dedupeFilter) IsEnabled() bool { return true }

func (f *dedupeFilter) Validate(*Config) error { return nil }

func (f *dedupeFilter) Apply(_ context.Context, deps Deps, l *jobs.List) (*jobs.List, Step, error) {
	initial := l.Len()
	seen := make(map[string]struct{}, initial)

	var dropped []string
	kept := l.Items[:0]
	for _, job := range l.Items {
		if _, ok := seen[job.ID]; ok {
			dropped = append(dropped, job.ID)
			continue
		}
		seen[job.ID] = struct{}{}
		kept = append(kept, job)
	}
	l.Items = kept

	if len(dropped) > 0 {
		deps.Logger.Debug("dropping duplicate jobs", zap.Strings("duplicates", dropped))
	}

	return l, Step{Initial: initial, Dropped: len(dropped), Left: l.Len()}, nil
}

func (f *dedupeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
