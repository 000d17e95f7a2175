package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

type companiesFilter struct {
	companies []string
}

// NewExcludedCompanies creates a filter that removes jobs of the companies
// configured in the config. Names match case-insensitively.
func NewExcludedCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "excluded_companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg != nil {
		for _, c := range cfg.Companies {
			if c = strings.TrimSpace(c); c != "" {
				f.companies = append(f.companies, c)
			}
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, l *jobs.List) (*jobs.List, Step, error) {
	initial := l.Len()
	if len(f.companies) == 0 {
		return l, unchanged(l), nil
	}

	excluded := l.Exclude(jobs.CompanyField, f.companies)
	if len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by company",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(excluded), Left: l.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
