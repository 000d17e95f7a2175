package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/requirements"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
)

func TestAnalyzeScenario(t *testing.T) {
	t.Parallel()

	intel := resume.FromSignals(
		resume.Signal{Value: "python", Weight: 1.0},
		resume.Signal{Value: "react", Weight: 1.0},
		resume.Signal{Value: "sql", Weight: 0.7},
	)
	req := requirements.Set{JobID: "job-1", Keywords: []string{"python", "react", "sql", "aws"}}

	got := Analyze(intel, req)

	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, []string{"python", "react", "sql"}, got.Matched())
	assert.Equal(t, []string{"aws"}, got.Gaps())
	assert.Equal(t, 0.75, got.FitScoreUnweighted)
	assert.Equal(t, 0.675, got.FitScore)
}

func TestAnalyzeKeepsRequirementOrder(t *testing.T) {
	t.Parallel()

	intel := resume.FromSignals(
		resume.Signal{Value: "aws", Weight: 0.2},
		resume.Signal{Value: "go", Weight: 1.0},
	)
	req := requirements.Set{Keywords: []string{"zig", "go", "terraform", "aws", "bash"}}

	got := Analyze(intel, req)
	assert.Equal(t, []string{"go", "aws"}, got.MatchedKeywords)
	assert.Equal(t, []string{"zig", "terraform", "bash"}, got.MissingKeywords)
}

func TestAnalyzeEmptyRequirements(t *testing.T) {
	t.Parallel()

	intel := resume.FromSignals(resume.Signal{Value: "go", Weight: 1.0})
	got := Analyze(intel, requirements.Set{})

	assert.Zero(t, got.FitScore)
	assert.Zero(t, got.FitScoreUnweighted)
	assert.Empty(t, got.Matched())
	assert.Empty(t, got.Gaps())
}

func TestAnalyzeNilIntelligence(t *testing.T) {
	t.Parallel()

	got := Analyze(nil, requirements.Set{Keywords: []string{"go"}})
	assert.Zero(t, got.FitScore)
	assert.Equal(t, []string{"go"}, got.Gaps())
}

func TestAnalyzePhrasesWeighMore(t *testing.T) {
	t.Parallel()

	intel := resume.FromSignals(
		resume.Signal{Value: "data pipelines", Weight: 1.0},
	)
	req := requirements.Set{
		Keywords: []string{"spark"},
		Phrases:  []string{"data pipelines"},
	}

	got := Analyze(intel, req)
	assert.Equal(t, 0.5, got.FitScoreUnweighted)
	assert.InDelta(t, 2.0/3.0, got.FitScore, 1e-4)
}

func TestScoresStayInRange(t *testing.T) {
	t.Parallel()

	resumes := []string{"", "Skills: Go, SQL\nInterests: go", "Summary\nPython and React developer"}
	postings := []jobs.Job{
		{Title: "Go Engineer", Description: "Go SQL Kubernetes"},
		{Title: "Chef", Description: "Cook pasta"},
		{},
	}

	for _, text := range resumes {
		intel := resume.Build(text, []string{"go"}, nil)
		for i := range postings {
			got := Analyze(intel, requirements.Extract(&postings[i]))
			assert.GreaterOrEqual(t, got.FitScore, 0.0)
			assert.LessOrEqual(t, got.FitScore, 1.0)
			assert.GreaterOrEqual(t, got.FitScoreUnweighted, 0.0)
			assert.LessOrEqual(t, got.FitScoreUnweighted, 1.0)
		}
	}
}

func TestProfileSkillsNeverGaps(t *testing.T) {
	t.Parallel()

	skills := []string{"Customer Service", "SQL", "Kubernetes"}
	job := &jobs.Job{
		Title:       "Support Engineer",
		Description: "Customer service mindset, SQL reporting and Kubernetes basics.",
	}
	req := requirements.Extract(job)

	for _, text := range []string{"", "Interests: kubernetes", "Completely unrelated gardening resume"} {
		got := Analyze(resume.Build(text, skills, nil), req)
		gaps := got.Gaps()
		for _, s := range []string{"customer service", "customer", "service", "sql", "kubernetes"} {
			assert.Contains(t, got.Matched(), s)
			assert.NotContains(t, gaps, s)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	a := Analysis{
		MatchedKeywords: []string{"go", "sql", "aws"},
		MatchedPhrases:  []string{"go services"},
		MissingKeywords: []string{"rust"},
		MissingPhrases:  []string{"rust tooling", "build systems"},
	}

	s := a.Summarize(2)
	assert.Equal(t, []string{"go services", "go", "sql"}, s.TopSignals)
	assert.Equal(t, []string{"rust tooling", "build systems", "rust"}, s.TopGaps)

	require.Len(t, a.Summarize(0).TopSignals, 4)
}

func TestNegativeBaseWeightPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		Analyzer{KeywordWeight: -1, PhraseWeight: 1}.Analyze(nil, requirements.Set{})
	})
}
