package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	IDField      = "ID"
	CompanyField = "Company"
)

// List is an ordered batch of jobs. Order is the fetch order and is used as
// the ranking tie-break, so removals keep the remaining order intact.
type List struct {
	Items []*Job `json:"items"`
}

// NewList wraps jobs in a List.
func NewList(items ...Job) *List {
	l := &List{Items: make([]*Job, 0, len(items))}
	for i := range items {
		job := items[i]
		l.Items = append(l.Items, &job)
	}
	return l
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Jobs returns copies of the listed jobs.
func (l *List) Jobs() []Job {
	out := make([]Job, 0, l.Len())
	for _, job := range l.Items {
		out = append(out, *job)
	}
	return out
}

func (l *List) FindByID(id string) *Job {
	for _, job := range l.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// GetStringField returns the value used by Exclude for the given field name.
func (j *Job) GetStringField(name string) string {
	switch name {
	case IDField:
		return j.ID
	case CompanyField:
		return strings.ToLower(j.Company)
	default:
		return ""
	}
}

// Exclude drops every job whose field matches one of targets and returns the
// ids of the dropped jobs.
func (l *List) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if name == CompanyField {
			t = strings.ToLower(strings.TrimSpace(t))
		}
		set[t] = struct{}{}
	}

	var excluded []string
	kept := l.Items[:0]
	for _, job := range l.Items {
		if _, ok := set[job.GetStringField(name)]; ok {
			excluded = append(excluded, job.ID)
			continue
		}
		kept = append(kept, job)
	}
	l.Items = kept
	return excluded
}

// ReportByCompany groups jobs under "Company (n)" keys for a quick overview.
func (l *List) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range l.Items {
		report[job.Company] = append(report[job.Company], map[string]string{
			"id":       job.ID,
			"title":    job.Title,
			"url":      job.URL,
			"location": job.Location,
			"salary":   salaryRange(job.SalaryMin, job.SalaryMax),
			"source":   job.Source,
		})
	}

	out := make(map[string][]map[string]string, len(report))
	for company, entries := range report {
		out[fmt.Sprintf("%s (%d)", company, len(entries))] = entries
	}
	return out
}

// DumpToTmpFile writes the list as indented JSON to a temporary file.
func (l *List) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func salaryRange(lo, hi *int) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("%d-%d", *lo, *hi)
	case lo != nil:
		return fmt.Sprintf("%d+", *lo)
	case hi != nil:
		return fmt.Sprintf("up to %d", *hi)
	default:
		return ""
	}
}
