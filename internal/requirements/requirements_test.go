package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

func TestExtractOrdersTitleFirst(t *testing.T) {
	t.Parallel()

	job := &jobs.Job{
		ID:          "abc",
		Title:       "Python Engineer",
		Description: "You will build React dashboards backed by SQL.",
		Tags:        []string{"aws"},
	}

	set := Extract(job)

	require.NotEmpty(t, set.Keywords)
	assert.Equal(t, "abc", set.JobID)
	assert.Equal(t, []string{"python", "engineer", "build", "react", "dashboards", "backed", "sql", "aws"}, set.Keywords)
	assert.Equal(t, "python engineer", set.Phrases[0])
	assert.Equal(t, set.Len(), len(set.Signals()))
	assert.Equal(t, set.Keywords, set.Signals()[:len(set.Keywords)])
}

func TestExtractEmptyJob(t *testing.T) {
	t.Parallel()

	set := Extract(&jobs.Job{})
	assert.Zero(t, set.Len())
	assert.Nil(t, set.MinYears)

	assert.Zero(t, Extract(nil).Len())
}

func TestExtractPrefersExplicitMinimum(t *testing.T) {
	t.Parallel()

	explicit := 2.0
	job := &jobs.Job{Title: "Go", Description: "7+ years of experience", MinYears: &explicit}
	set := Extract(job)
	require.NotNil(t, set.MinYears)
	assert.InDelta(t, 2.0, *set.MinYears, 1e-9)

	job.MinYears = nil
	set = Extract(job)
	require.NotNil(t, set.MinYears)
	assert.InDelta(t, 7.0, *set.MinYears, 1e-9)
}

func TestInferMinYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		expect float64
		found  bool
	}{
		{name: "plus form", text: "5+ years of experience with Go", expect: 5, found: true},
		{name: "range", text: "3-5 years experience in backend", expect: 3, found: true},
		{name: "lead phrase", text: "at least 4 years building APIs", expect: 4, found: true},
		{name: "largest wins", text: "2 years experience with k8s and 6+ years professional Python", expect: 6, found: true},
		{name: "no context", text: "Founded 20 years ago in Austin", found: false},
		{name: "absurd", text: "99 years of experience", found: false},
		{name: "empty", text: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := InferMinYears(tt.text)
			if !tt.found {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.expect, *got, 1e-9)
		})
	}
}
