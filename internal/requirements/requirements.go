// Package requirements extracts ordered requirement signals from a job posting.
package requirements

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
)

const maxYears = 30

var (
	yearsPattern = regexp.MustCompile(`(\d{1,2})\s*(?:\+|plus)?\s*(?:(?:-|to|–)\s*\d{1,2}\s*\+?\s*)?(?:years?|yrs?)\b`)
	yearsContext = regexp.MustCompile(`\b(experience|exp|background|professional|industry|hands-on)\b`)
	yearsLead    = regexp.MustCompile(`\b(at least|minimum|min\.?|over)\s*$`)
)

// Set is the ordered requirement signals of one job. Title signals come first,
// then description, then tags.
type Set struct {
	JobID    string
	Keywords []string
	Phrases  []string
	// MinYears is the explicit job minimum or the one stated in the text.
	MinYears *float64
}

// Signals returns keywords followed by phrases.
func (s Set) Signals() []string {
	return textsignal.Signals{Keywords: s.Keywords, Phrases: s.Phrases}.All()
}

// Len is the number of requirement signals.
func (s Set) Len() int { return len(s.Keywords) + len(s.Phrases) }

// Extractor builds requirement sets with a fixed signal policy.
type Extractor struct {
	policy textsignal.Policy
}

// New returns an Extractor using policy.
func New(policy textsignal.Policy) *Extractor {
	return &Extractor{policy: policy}
}

// Extract builds the requirement set for job.
func (e *Extractor) Extract(job *jobs.Job) Set {
	if job == nil {
		return Set{}
	}

	sig := e.policy.Extract(Text(job))
	set := Set{
		JobID:    job.ID,
		Keywords: sig.Keywords,
		Phrases:  sig.Phrases,
		MinYears: job.MinYears,
	}
	if set.MinYears == nil {
		set.MinYears = InferMinYears(job.Description)
	}
	return set
}

// Extract runs the default policy over job.
func Extract(job *jobs.Job) Set {
	return New(textsignal.DefaultPolicy()).Extract(job)
}

// Text joins the matchable parts of a job in priority order.
func Text(job *jobs.Job) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{job.Title, job.Description, strings.Join(job.Tags, " ")} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// InferMinYears finds statements such as "5+ years of experience" and returns
// the largest stated minimum, or nil.
func InferMinYears(text string) *float64 {
	lower := strings.ToLower(textsignal.Normalize(text))
	if lower == "" {
		return nil
	}

	best := -1
	for _, loc := range yearsPattern.FindAllStringSubmatchIndex(lower, -1) {
		after := lower[loc[1]:min(len(lower), loc[1]+40)]
		before := lower[max(0, loc[0]-20):loc[0]]
		if !yearsContext.MatchString(after) && !yearsLead.MatchString(before) {
			continue
		}
		n, err := strconv.Atoi(lower[loc[2]:loc[3]])
		if err != nil || n <= 0 || n > maxYears {
			continue
		}
		if n > best {
			best = n
		}
	}

	if best < 0 {
		return nil
	}
	years := float64(best)
	return &years
}
