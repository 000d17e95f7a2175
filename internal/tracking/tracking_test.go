package tracking

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	r := New(filepath.Join(t.TempDir(), "state"))
	r.now = func() time.Time { return fixedNow }
	return r
}

func TestLoadMissingAndEmpty(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	entries, err := r.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, os.MkdirAll(r.Dir(), dirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), trackingFile), []byte("  \n"), filePerm))
	entries, err = r.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpsertSaved(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	batch := []jobs.Job{
		{ID: "a", Title: "Go Engineer", Company: "Acme", URL: "https://acme.test/1"},
		{ID: "b", Title: "SRE", Company: "Globex"},
	}

	created, already, err := r.UpsertSaved(batch)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Zero(t, already)

	_, err = r.SetStatus("a", StatusApplied)
	require.NoError(t, err)

	created, already, err = r.UpsertSaved(append(batch, jobs.Job{ID: "c"}))
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 2, already)

	entries, err := r.Load()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, StatusApplied, entries["a"].Status, "existing entries are not reset")
	assert.Equal(t, "Acme", entries["a"].Company)
	assert.Equal(t, fixedNow, entries["b"].SavedAt)

	info, err := os.Stat(filepath.Join(r.Dir(), trackingFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())
}

func TestSetStatus(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	_, _, err := r.UpsertSaved([]jobs.Job{{ID: "a"}})
	require.NoError(t, err)

	entry, err := r.SetStatus("a", StatusApplied)
	require.NoError(t, err)
	require.NotNil(t, entry.AppliedAt)
	assert.Equal(t, fixedNow, *entry.AppliedAt)

	_, err = r.SetStatus("missing", StatusApplied)
	assert.ErrorIs(t, err, ErrNotTracked)

	_, err = r.SetStatus("a", Status("ghosted"))
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	s, err := ParseStatus(" Interview ")
	require.NoError(t, err)
	assert.Equal(t, StatusInterview, s)

	_, err = ParseStatus("maybe")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestIDsWithStatus(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	_, _, err := r.UpsertSaved([]jobs.Job{{ID: "c"}, {ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	_, err = r.SetStatus("c", StatusRejected)
	require.NoError(t, err)
	_, err = r.SetStatus("a", StatusApplied)
	require.NoError(t, err)

	ids, err := r.IDsWithStatus(StatusApplied, StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestLoadFillsMissingFields(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	require.NoError(t, os.MkdirAll(r.Dir(), dirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), trackingFile), []byte(`{"x": {}}`), filePerm))

	entries, err := r.Load()
	require.NoError(t, err)
	assert.Equal(t, "x", entries["x"].JobID)
	assert.Equal(t, StatusSaved, entries["x"].Status)

	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), trackingFile), []byte(`[`), filePerm))
	_, err = r.Load()
	assert.Error(t, err)
}

func TestRecordRun(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	first, err := r.RecordRun(Run{UserID: "local-user", Fetched: 10, Considered: 8, TopK: 3, Created: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, fixedNow, first.RanAt)

	second, err := r.RecordRun(Run{UserID: "local-user", Fetched: 4})
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	runs, err := r.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0])
	assert.Equal(t, 4, runs[1].Fetched)

	info, err := os.Stat(filepath.Join(r.Dir(), runsFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())
}

func TestConcurrentUpserts(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := r.UpsertSaved([]jobs.Job{{ID: "same"}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := r.Load()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDefaultDir(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultDir, New("  ").Dir())
}
