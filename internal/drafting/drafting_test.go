package drafting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

func years(v float64) *float64 { return &v }

func TestComposeIsDeterministic(t *testing.T) {
	t.Parallel()

	profile := &jobs.Profile{Skills: []string{"Python", "SQL", "Go"}, ExperienceYears: years(6)}
	job := &jobs.Job{ID: "j1", Title: "Data Engineer", Company: "Acme", Description: "Python and SQL pipelines. Good vibes."}

	d := Compose(profile, job)
	assert.Equal(t, d, Compose(profile, job))

	assert.Equal(t, "j1", d.JobID)
	assert.Equal(t, "Interest in Data Engineer at Acme", d.Subject)
	assert.Equal(t, "Subject: Interest in Data Engineer at Acme", d.SubjectLine())
	assert.True(t, strings.HasPrefix(d.Body, "Hi Acme team,"))
	assert.Contains(t, d.Body, "6+ years of experience")
	assert.Contains(t, d.Body, "experience in Python, SQL.")

	text := d.Text()
	require.True(t, strings.HasPrefix(text, d.SubjectLine()+"\n\n"))
	assert.NotContains(t, text, "—")
}

func TestComposeDefaults(t *testing.T) {
	t.Parallel()

	d := Compose(&jobs.Profile{}, &jobs.Job{})
	assert.Equal(t, "Interest in this role at your team", d.Subject)
	assert.NotContains(t, d.Body, "years of experience")
	assert.Contains(t, d.Body, "lines up well")
}

func TestRelevantSkills(t *testing.T) {
	t.Parallel()

	job := &jobs.Job{
		Title:       "Backend Engineer",
		Description: "We write good Golang services, run Kubernetes and care about customer service.",
		Tags:        []string{"postgres"},
	}

	tests := []struct {
		name   string
		skills []string
		expect []string
	}{
		{
			name:   "whole token only",
			skills: []string{"go", "golang", "kube", "Kubernetes"},
			expect: []string{"golang", "Kubernetes"},
		},
		{
			name:   "multi word substring and tags",
			skills: []string{"Customer Service", "Postgres"},
			expect: []string{"Customer Service", "Postgres"},
		},
		{
			name:   "capped",
			skills: []string{"golang", "kubernetes", "postgres", "services", "customer service"},
			expect: []string{"golang", "kubernetes", "postgres", "services"},
		},
		{
			name:   "fallback to first skills",
			skills: []string{"Cooking", "", "Baking"},
			expect: []string{"Cooking", "Baking"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RelevantSkills(&jobs.Profile{Skills: tt.skills}, job)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestWithBodyKeepsSubject(t *testing.T) {
	t.Parallel()

	d := Draft{JobID: "x", Subject: "Interest in A at B", Body: "old"}
	got := d.WithBody("  new body \n")
	assert.Equal(t, "new body", got.Body)
	assert.Equal(t, d.Subject, got.Subject)
	assert.Equal(t, "old", d.Body)
}
