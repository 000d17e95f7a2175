// Package sources fetches job postings and turns them into normalised jobs.
package sources

import (
	"context"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

// Source produces a batch of jobs.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]jobs.Job, error)
}

// FetchAll collects jobs from every source in order. A failing source is
// logged and skipped; only a cancelled context aborts the whole fetch.
func FetchAll(ctx context.Context, logger *zap.Logger, srcs ...Source) ([]jobs.Job, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var all []jobs.Job
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		fetched, err := src.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			logger.Warn("source failed, skipping", zap.String("source", src.Name()), zap.Error(err))
			continue
		}

		logger.Debug("source fetched", zap.String("source", src.Name()), zap.Int("jobs", len(fetched)))
		all = append(all, fetched...)
	}
	return all, nil
}
