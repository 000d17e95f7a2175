package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/tracking"
)

func TestSetStatusAndList(t *testing.T) {
	store := tracking.New(filepath.Join(t.TempDir(), "state"))

	var out bytes.Buffer
	if err := listTracked(&out, store); err != nil {
		t.Fatalf("listing empty store: %v", err)
	}
	if !strings.Contains(out.String(), "no tracked jobs") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	if _, _, err := store.UpsertSaved([]jobs.Job{
		{ID: "a1", Title: "Go Engineer", Company: "Acme"},
		{ID: "b2", Title: "SRE", Company: "Globex"},
	}); err != nil {
		t.Fatalf("saving jobs: %v", err)
	}

	entry, err := setStatus(store, "a1", " Applied ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != tracking.StatusApplied || entry.AppliedAt == nil {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := setStatus(store, "a1", "ghosted"); !errors.Is(err, tracking.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if _, err := setStatus(store, "zz", "rejected"); !errors.Is(err, tracking.ErrNotTracked) {
		t.Fatalf("expected ErrNotTracked, got %v", err)
	}

	out.Reset()
	if err := listTracked(&out, store); err != nil {
		t.Fatalf("listing store: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "JOB ID") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(out.String(), "applied") || !strings.Contains(out.String(), "Globex") {
		t.Fatalf("unexpected rows: %q", out.String())
	}
}
