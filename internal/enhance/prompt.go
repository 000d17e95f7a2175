package enhance

import (
	_ "embed"
	"sort"
	"strconv"
	"strings"

	"github.com/orestes-garcia-martinez/careerclaw/internal/gap"
	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
)

//go:embed prompts/system.md
var systemTemplate string

//go:embed prompts/user.md
var userTemplate string

const (
	promptMinWords = 150
	promptMaxWords = 200

	contextLimit    = 150
	maxKeywords     = 5
	maxPhrases      = 3
	maxHighlights   = 5
	maxFigures      = 5
	noneDetected    = "(none detected)"
	seeSummary      = "(see resume summary)"
	noFigures       = "(none)"
	defaultTitle    = "the position"
	defaultCompany  = "the company"
	defaultGreeting = "team"
)

// SystemPrompt is the instruction sent with every request.
func SystemPrompt() string {
	return fill(systemTemplate, map[string]string{
		"MIN_WORDS": strconv.Itoa(promptMinWords),
		"MAX_WORDS": strconv.Itoa(promptMaxWords),
	})
}

// BuildPrompt assembles the user turn from the job, its gap analysis and the
// resume. Only signals present in the resume reach the prompt.
func BuildPrompt(job *jobs.Job, analysis *gap.Analysis, intel *resume.Intelligence) string {
	var matchedKW, matchedPH []string
	if analysis != nil {
		matchedKW = head(analysis.MatchedKeywords, maxKeywords)
		matchedPH = head(analysis.MatchedPhrases, maxPhrases)
	}
	signals := append(append([]string{}, matchedKW...), matchedPH...)

	company := strings.TrimSpace(job.Company)
	greeting := company
	if greeting == "" {
		greeting = defaultGreeting
	}

	return fill(userTemplate, map[string]string{
		"TITLE":      orDefault(job.Title, defaultTitle),
		"COMPANY":    orDefault(company, defaultCompany),
		"CONTEXT":    companyContext(job.Description),
		"SIGNALS":    joinOr(signals, noneDetected),
		"HIGHLIGHTS": joinOr(highlights(intel, signals), seeSummary),
		"FIGURES":    joinOr(head(intel.ImpactSignals(), maxFigures), noFigures),
		"GREETING":   greeting,
		"MIN_WORDS":  strconv.Itoa(promptMinWords),
		"MAX_WORDS":  strconv.Itoa(promptMaxWords),
	})
}

// companyContext is the first sentence of the description, capped.
func companyContext(description string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(description), ".")
	first = strings.TrimSpace(first)
	if runes := []rune(first); len(runes) > contextLimit {
		return string(runes[:contextLimit]) + "..."
	}
	return first
}

// highlights keeps resume keywords that the job also asks for, falling back to
// the first resume keywords.
func highlights(intel *resume.Intelligence, signals []string) []string {
	keywords := intel.Keywords()
	wanted := make(map[string]struct{}, len(signals))
	for _, s := range signals {
		wanted[s] = struct{}{}
	}

	var out []string
	for _, k := range keywords {
		if _, ok := wanted[k]; ok {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		out = keywords
	}
	return head(out, maxHighlights)
}

// fill substitutes every placeholder in one pass, so placeholders that appear
// inside substituted values are left as they are.
func fill(template string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, "{{"+key+"}}", values[key])
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
