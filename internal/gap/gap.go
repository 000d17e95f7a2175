// Package gap compares resume signals with the requirement signals of a job.
package gap

import (
	"math"

	"github.com/orestes-garcia-martinez/careerclaw/internal/requirements"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
)

const (
	DefaultKeywordWeight = 1.0
	DefaultPhraseWeight  = 2.0
	defaultSummarySize   = 5
)

// Analysis is the fit of one resume against one job. Matched and missing lists
// follow the order of the job's requirement signals.
type Analysis struct {
	JobID              string   `json:"job_id,omitempty"`
	FitScore           float64  `json:"fit_score"`
	FitScoreUnweighted float64  `json:"fit_score_unweighted"`
	MatchedKeywords    []string `json:"matched_keywords"`
	MissingKeywords    []string `json:"missing_keywords"`
	MatchedPhrases     []string `json:"matched_phrases"`
	MissingPhrases     []string `json:"missing_phrases"`
}

// Summary is the short form used for display and prompting. Phrases come
// before keywords because they read better.
type Summary struct {
	TopSignals []string `json:"top_signals"`
	TopGaps    []string `json:"top_gaps"`
}

// Analyzer holds the base weights of keyword and phrase requirements.
type Analyzer struct {
	KeywordWeight float64
	PhraseWeight  float64
}

// NewAnalyzer returns an Analyzer with the default base weights.
func NewAnalyzer() Analyzer {
	return Analyzer{KeywordWeight: DefaultKeywordWeight, PhraseWeight: DefaultPhraseWeight}
}

// Analyze runs the default analyzer.
func Analyze(intel *resume.Intelligence, req requirements.Set) Analysis {
	return NewAnalyzer().Analyze(intel, req)
}

// Analyze checks each requirement signal against the resume. The weighted score
// divides the base-weighted resume weights of matched signals by the base
// weight of every requirement signal; the unweighted score is the matched
// fraction. An empty requirement set scores zero on both.
func (a Analyzer) Analyze(intel *resume.Intelligence, req requirements.Set) Analysis {
	if a.KeywordWeight < 0 || a.PhraseWeight < 0 {
		panic("gap: negative base weight")
	}

	out := Analysis{
		JobID:           req.JobID,
		MatchedKeywords: []string{},
		MissingKeywords: []string{},
		MatchedPhrases:  []string{},
		MissingPhrases:  []string{},
	}
	if req.Len() == 0 {
		return out
	}

	var numer, denom float64
	matched := 0

	check := func(signals []string, base float64, hit, miss *[]string) {
		for _, s := range signals {
			denom += base
			w, ok := intel.Weight(s)
			if !ok {
				*miss = append(*miss, s)
				continue
			}
			matched++
			numer += base * w
			*hit = append(*hit, s)
		}
	}
	check(req.Keywords, a.KeywordWeight, &out.MatchedKeywords, &out.MissingKeywords)
	check(req.Phrases, a.PhraseWeight, &out.MatchedPhrases, &out.MissingPhrases)

	if denom > 0 {
		out.FitScore = round4(clamp01(numer / denom))
	}
	out.FitScoreUnweighted = round4(clamp01(float64(matched) / float64(req.Len())))
	return out
}

// Matched returns matched keywords followed by matched phrases.
func (a Analysis) Matched() []string {
	return concat(a.MatchedKeywords, a.MatchedPhrases)
}

// Gaps returns missing keywords followed by missing phrases.
func (a Analysis) Gaps() []string {
	return concat(a.MissingKeywords, a.MissingPhrases)
}

// Summarize keeps the first n phrases and n keywords of each side. n <= 0
// uses the default size.
func (a Analysis) Summarize(n int) Summary {
	if n <= 0 {
		n = defaultSummarySize
	}
	return Summary{
		TopSignals: concat(head(a.MatchedPhrases, n), head(a.MatchedKeywords, n)),
		TopGaps:    concat(head(a.MissingPhrases, n), head(a.MissingKeywords, n)),
	}
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
