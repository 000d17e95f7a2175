package filtering

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes jobs listed in an exclude
// file. The file uses the format written by jobs.List.DumpToTmpFile.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, l *jobs.List) (*jobs.List, Step, error) {
	initial := l.Len()
	if f.path == "" {
		return l, unchanged(l), nil
	}

	ids, err := excludedIDsFromFile(f.path)
	if err != nil {
		return l, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	removed := l.Exclude(jobs.IDField, ids)
	if len(removed) > 0 {
		deps.Logger.Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", removed),
			zap.Int("jobs_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(removed), Left: l.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

func excludedIDsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return nil, nil
	}

	var excluded jobs.List
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}

	ids := make([]string, 0, excluded.Len())
	for _, job := range excluded.Items {
		if job != nil && job.ID != "" {
			ids = append(ids, job.ID)
		}
	}
	return ids, nil
}
