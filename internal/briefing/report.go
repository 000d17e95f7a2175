package briefing

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

const highlightCount = 4

// WriteSummary prints a human-readable briefing.
func WriteSummary(w io.Writer, r *Result) error {
	var b strings.Builder

	b.WriteString("=== CareerClaw Daily Briefing ===\n")
	fmt.Fprintf(&b, "User: %s\n", r.UserID)
	fmt.Fprintf(&b, "Fetched jobs: %d | After filters: %d", r.FetchedJobs, r.ConsideredJobs)
	if r.RejectedJobs > 0 {
		fmt.Fprintf(&b, " | Rejected: %d", r.RejectedJobs)
	}
	b.WriteString("\n")
	if r.DryRun {
		b.WriteString("Mode: DRY RUN (no tracking written)\n")
	} else {
		fmt.Fprintf(&b, "Tracking: +%d new saved, %d already saved\n", r.Tracking.Created, r.Tracking.AlreadyPresent)
	}
	fmt.Fprintf(&b, "Duration: %dms\n", r.DurationMS)

	b.WriteString("\nTop Matches:\n")
	if len(r.TopMatches) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, m := range r.TopMatches {
		j := m.Job
		fmt.Fprintf(&b, "\n%d) %s @ %s", i+1, j.Title, j.Company)
		if j.Location != "" {
			fmt.Fprintf(&b, " (%s)", j.Location)
		}
		fmt.Fprintf(&b, "  [%s]\n", j.Source)
		fmt.Fprintf(&b, "   id: %s\n", j.ID)
		fmt.Fprintf(&b, "   score: %.4f (keyword %.2f, experience %.2f, salary %.2f, work mode %.2f)\n",
			m.Score, m.Breakdown.Keyword, m.Breakdown.Experience, m.Breakdown.Salary, m.Breakdown.WorkMode)
		if m.Analysis != nil {
			fmt.Fprintf(&b, "   fit: %d%%\n", int(m.Analysis.FitScore*100))
		}
		if m.Summary != nil {
			if top := headOf(m.Summary.TopSignals, highlightCount); len(top) > 0 {
				fmt.Fprintf(&b, "   highlights: %s\n", strings.Join(top, ", "))
			}
			if gaps := headOf(m.Summary.TopGaps, highlightCount); len(gaps) > 0 {
				fmt.Fprintf(&b, "   gaps: %s\n", strings.Join(gaps, ", "))
			}
		}
		if j.URL != "" {
			fmt.Fprintf(&b, "   url: %s\n", j.URL)
		}
	}

	b.WriteString("\nDrafts:\n")
	for i, d := range r.Drafts {
		tag := ""
		if d.Enhanced {
			tag = fmt.Sprintf(" [LLM enhanced: %s/%s]", d.Provider, d.Model)
		} else if d.Reason != "" {
			tag = fmt.Sprintf(" [deterministic: %s]", d.Reason)
		}
		fmt.Fprintf(&b, "\n--- Draft #%d (job_id=%s)%s ---\n", i+1, d.JobID, tag)
		b.WriteString(d.Text)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// DumpToTmpFile writes r as indented JSON to a temporary file.
func DumpToTmpFile(r *Result) (string, error) {
	file, err := os.CreateTemp("", "careerclaw_briefing_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteJSON(file, r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func headOf(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
