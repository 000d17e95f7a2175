// Package jobs holds the normalized job and profile records consumed by the
// matching pipeline.
package jobs

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
)

const idLength = 16

// Job is a normalized posting from any source.
type Job struct {
	ID          string     `json:"job_id" mapstructure:"job_id"`
	Source      string     `json:"source" mapstructure:"source" validate:"required"`
	Title       string     `json:"title" mapstructure:"title" validate:"required"`
	Company     string     `json:"company" mapstructure:"company" validate:"required"`
	Description string     `json:"description" mapstructure:"description"`
	Location    string     `json:"location,omitempty" mapstructure:"location"`
	Tags        []string   `json:"tags,omitempty" mapstructure:"tags"`
	SalaryMin   *int       `json:"salary_min,omitempty" mapstructure:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax   *int       `json:"salary_max,omitempty" mapstructure:"salary_max" validate:"omitempty,gte=0"`
	MinYears    *float64   `json:"min_years,omitempty" mapstructure:"min_years" validate:"omitempty,gte=0,lte=60"`
	WorkMode    WorkMode   `json:"work_mode,omitempty" mapstructure:"work_mode" validate:"omitempty,oneof=remote hybrid onsite"`
	PostedAt    *time.Time `json:"posted_at,omitempty" mapstructure:"posted_at"`
	URL         string     `json:"canonical_url,omitempty" mapstructure:"canonical_url" validate:"omitempty,url"`
	SourceRef   string     `json:"source_ref,omitempty" mapstructure:"source_ref"`
}

// Normalize cleans whitespace, lowercases and dedupes tags, moves PostedAt to
// UTC, orders the salary range and fills ID when it is missing.
func (j *Job) Normalize() {
	j.Source = strings.ToLower(strings.TrimSpace(j.Source))
	j.Title = collapse(j.Title)
	j.Company = collapse(j.Company)
	j.Location = collapse(j.Location)
	j.Description = textsignal.Normalize(j.Description)
	j.URL = strings.TrimSpace(j.URL)
	j.Tags = normalizeTags(j.Tags)

	if j.PostedAt != nil {
		utc := j.PostedAt.UTC()
		j.PostedAt = &utc
	}

	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > *j.SalaryMax {
		j.SalaryMin, j.SalaryMax = j.SalaryMax, j.SalaryMin
	}

	if strings.TrimSpace(j.ID) == "" {
		j.ID = StableID(j.Source, j.URL, j.Title, j.Company, j.PostedAt)
	}
}

// Mode returns the explicit work mode or one inferred from the posting text.
func (j *Job) Mode() WorkMode {
	if j.WorkMode != WorkModeUnknown {
		return j.WorkMode
	}
	return InferWorkMode(j.Location, strings.Join(j.Tags, " "), j.Title, j.Description)
}

// Validate rejects postings that cannot be scored.
func (j *Job) Validate() error {
	if err := validate.Struct(j); err != nil {
		return &ValidationError{Kind: "job", ID: j.ID, Err: err}
	}
	return nil
}

// StableID hashes the identifying fields of a posting into a short hex id.
func StableID(source, url, title, company string, postedAt *time.Time) string {
	date := ""
	if postedAt != nil {
		date = postedAt.UTC().Format(time.RFC3339)
	}
	key := strings.Join([]string{source, url, title, company, date}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:idLength]
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(collapse(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
