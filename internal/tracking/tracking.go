// Package tracking persists saved jobs and the run log as local files.
package tracking

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

const (
	DefaultDir   = ".careerclaw"
	trackingFile = "tracking.json"
	runsFile     = "runs.jsonl"
	filePerm     = 0o600
	dirPerm      = 0o700
)

// Status is where an application stands.
type Status string

const (
	StatusSaved     Status = "saved"
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusRejected  Status = "rejected"
)

var (
	ErrUnknownStatus = errors.New("unknown status")
	ErrNotTracked    = errors.New("job is not tracked")
)

// ParseStatus validates a status name.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case StatusSaved, StatusApplied, StatusInterview, StatusRejected:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
}

// Entry is one tracked job.
type Entry struct {
	JobID     string     `json:"job_id"`
	Status    Status     `json:"status"`
	Title     string     `json:"title,omitempty"`
	Company   string     `json:"company,omitempty"`
	URL       string     `json:"url,omitempty"`
	SavedAt   time.Time  `json:"saved_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// Run is one line of the run log.
type Run struct {
	RunID          string    `json:"run_id"`
	UserID         string    `json:"user_id"`
	RanAt          time.Time `json:"ran_at"`
	Fetched        int       `json:"fetched"`
	Considered     int       `json:"considered"`
	TopK           int       `json:"top_k"`
	Created        int       `json:"created"`
	AlreadyPresent int       `json:"already_present"`
	Enhanced       int       `json:"enhanced"`
}

// Repository stores tracking.json and runs.jsonl under one directory.
// It is safe for concurrent use within one process.
type Repository struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

func New(dir string) *Repository {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	return &Repository{dir: dir, now: time.Now}
}

func (r *Repository) Dir() string { return r.dir }

// Load returns every tracked entry keyed by job id. A missing or empty file
// yields an empty map.
func (r *Repository) Load() (map[string]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// UpsertSaved stores new jobs as saved. Jobs that are already tracked keep
// their entry untouched.
func (r *Repository) UpsertSaved(items []jobs.Job) (created, already int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return 0, 0, err
	}

	now := r.now().UTC()
	for _, job := range items {
		if _, ok := entries[job.ID]; ok {
			already++
			continue
		}
		entries[job.ID] = Entry{
			JobID:     job.ID,
			Status:    StatusSaved,
			Title:     job.Title,
			Company:   job.Company,
			URL:       job.URL,
			SavedAt:   now,
			UpdatedAt: now,
		}
		created++
	}

	if err := r.write(entries); err != nil {
		return 0, 0, err
	}
	return created, already, nil
}

// SetStatus moves a tracked job to status.
func (r *Repository) SetStatus(id string, status Status) (Entry, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return Entry{}, err
	}

	entry, ok := entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotTracked, id)
	}

	now := r.now().UTC()
	entry.Status = status
	entry.UpdatedAt = now
	if status == StatusApplied && entry.AppliedAt == nil {
		entry.AppliedAt = &now
	}
	entries[id] = entry

	if err := r.write(entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// IDsWithStatus returns the sorted ids of entries in any of statuses.
func (r *Repository) IDsWithStatus(statuses ...Status) ([]string, error) {
	entries, err := r.Load()
	if err != nil {
		return nil, err
	}

	want := make(map[Status]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}

	var ids []string
	for id, entry := range entries {
		if _, ok := want[entry.Status]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// RecordRun appends run to the run log, filling RunID and RanAt when unset.
func (r *Repository) RecordRun(run Run) (Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.RanAt.IsZero() {
		run.RanAt = r.now()
	}
	run.RanAt = run.RanAt.UTC()

	line, err := json.Marshal(run)
	if err != nil {
		return run, err
	}

	if err := os.MkdirAll(r.dir, dirPerm); err != nil {
		return run, err
	}
	path := filepath.Join(r.dir, runsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return run, err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return run, err
	}
	return run, os.Chmod(path, filePerm)
}

// Runs reads the run log in append order.
func (r *Repository) Runs() ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(filepath.Join(r.dir, runsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var runs []Run
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var run Run
		if err := json.Unmarshal([]byte(line), &run); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", runsFile, err)
		}
		runs = append(runs, run)
	}
	return runs, scanner.Err()
}

func (r *Repository) load() (map[string]Entry, error) {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(filepath.Join(r.dir, trackingFile))
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", trackingFile, err)
	}
	for id, entry := range entries {
		if entry.JobID == "" {
			entry.JobID = id
		}
		if entry.Status == "" {
			entry.Status = StatusSaved
		}
		entries[id] = entry
	}
	return entries, nil
}

// write replaces tracking.json through a temp file so readers never see a
// partial document.
func (r *Repository) write(entries map[string]Entry) error {
	if err := os.MkdirAll(r.dir, dirPerm); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, trackingFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(r.dir, trackingFile))
}
