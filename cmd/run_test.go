package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/briefing"
	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
	"github.com/orestes-garcia-martinez/careerclaw/internal/sources"
	"github.com/orestes-garcia-martinez/careerclaw/internal/tracking"
)

const jobsFixture = `[
  {"title": "Go Engineer", "company": "Acme", "description": "Go, Kubernetes and PostgreSQL.", "location": "Remote", "salary_min": "120000"},
  {"title": "Data Analyst", "company": "Globex", "description": "SQL and dashboards.", "location": "Remote"}
]`

func newSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	jobsFile := filepath.Join(dir, "jobs.json")
	if err := os.WriteFile(jobsFile, []byte(jobsFixture), 0o600); err != nil {
		t.Fatalf("writing jobs: %v", err)
	}

	store := tracking.New(filepath.Join(dir, "state"))
	orch := briefing.New([]sources.Source{sources.NewFile(jobsFile, zap.NewNop())}, briefing.WithStore(store))
	opts := briefing.Options{TopK: 2, DryRun: true}

	profile := &jobs.Profile{Skills: []string{"go", "kubernetes"}, TargetRoles: []string{"go engineer"}}
	res, err := orch.Run(context.Background(), profile, nil, opts)
	if err != nil {
		t.Fatalf("running briefing: %v", err)
	}

	var out bytes.Buffer
	return &session{orch: orch, store: store, result: res, opts: opts, logger: zap.NewNop(), out: &out}, &out
}

func TestHandleActionShowDrafts(t *testing.T) {
	s, out := newSession(t)

	if err := handleAction(PromptShowDrafts, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Subject: Interest in Go Engineer at Acme") {
		t.Fatalf("drafts not printed: %q", out.String())
	}
	if strings.Count(out.String(), "--- Draft #") != 2 {
		t.Fatalf("expected two drafts: %q", out.String())
	}
}

func TestHandleActionSaveMatches(t *testing.T) {
	s, _ := newSession(t)

	if err := handleAction(PromptSaveMatches, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.result.RunID == "" || s.result.Tracking.Created != 2 {
		t.Fatalf("matches not tracked: %+v", s.result.Tracking)
	}

	// a second save is a no-op
	if err := handleAction(PromptSaveMatches, s); err != nil {
		t.Fatalf("unexpected error on second save: %v", err)
	}
	runs, err := s.store.Runs()
	if err != nil {
		t.Fatalf("reading runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(runs))
	}
}

func TestHandleActionDumps(t *testing.T) {
	s, _ := newSession(t)

	for _, action := range []string{PromptMatchesToFile, PromptResultToFile, PromptReportByCompany} {
		if err := handleAction(action, s); err != nil {
			t.Fatalf("%s: unexpected error: %v", action, err)
		}
	}
}

func TestHandleActionExitAndInvalid(t *testing.T) {
	s, _ := newSession(t)

	if err := handleAction(PromptExit, s); !errors.Is(err, errExit) {
		t.Fatalf("expected errExit, got %v", err)
	}
	if err := handleAction("dance", s); err == nil {
		t.Fatalf("expected error for an invalid action")
	}
}

func TestMatchedList(t *testing.T) {
	s, _ := newSession(t)

	l := matchedList(s.result)
	if l.Len() != len(s.result.TopMatches) {
		t.Fatalf("expected %d jobs, got %d", len(s.result.TopMatches), l.Len())
	}
	if l.FindByID(s.result.TopMatches[0].Job.ID) == nil {
		t.Fatalf("top match missing from list")
	}
}

func TestBuildSources(t *testing.T) {
	srcs := buildSources(nil, []string{"a.json", " "}, zap.NewNop())
	if len(srcs) != 2 {
		t.Fatalf("expected remoteok and one file, got %d", len(srcs))
	}
	if srcs[0].Name() != sources.RemoteOKName || srcs[1].Name() != "file:a.json" {
		t.Fatalf("unexpected sources: %s, %s", srcs[0].Name(), srcs[1].Name())
	}

	cfg := &SourcesConfig{
		UserAgent: "test-agent",
		RemoteOK:  &RemoteOKConfig{URL: "http://feed.test/rss", Limit: 5},
		Files:     []string{"b.json"},
	}
	srcs = buildSources(cfg, nil, zap.NewNop())
	remote, ok := srcs[0].(*sources.RemoteOK)
	if !ok {
		t.Fatalf("expected a RemoteOK source first, got %T", srcs[0])
	}
	if remote.URL != "http://feed.test/rss" || remote.Limit != 5 {
		t.Fatalf("remoteok not configured: %+v", remote)
	}

	cfg.RemoteOK.Disabled = true
	srcs = buildSources(cfg, nil, zap.NewNop())
	if len(srcs) != 1 || srcs[0].Name() != "file:b.json" {
		t.Fatalf("expected only the file source, got %d", len(srcs))
	}
}

func TestLoadIntelligence(t *testing.T) {
	profile := &jobs.Profile{Skills: []string{"go"}}

	intel, err := loadIntelligence(profile, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intel.Source() != resume.SourceProfileOnly {
		t.Fatalf("unexpected source: %s", intel.Source())
	}

	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("Experience\nBuilt Go services handling 10k requests per second."), 0o600); err != nil {
		t.Fatalf("writing resume: %v", err)
	}
	intel, err = loadIntelligence(profile, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intel.Source() != resume.SourceResumePlusProfile {
		t.Fatalf("unexpected source: %s", intel.Source())
	}

	if _, err := loadIntelligence(profile, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for a missing resume")
	}
}

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)
	if !strings.HasPrefix(out.String(), "careerclaw version: unknown (commit none, go") {
		t.Fatalf("unexpected version output: %q", out.String())
	}
}
