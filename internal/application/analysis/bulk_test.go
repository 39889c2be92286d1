package analysis

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

type memBulkRepo struct {
	mu    sync.Mutex
	snaps []*domain.BulkSnapshot
}

func (r *memBulkRepo) SaveRun(ctx context.Context, snap *domain.BulkSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
	return nil
}

func newTestBulk(t *testing.T, opts serviceOpts, workers int, pacing time.Duration) (*BulkService, *memBulkRepo) {
	t.Helper()
	repo := &memBulkRepo{}
	return NewBulkService(newTestService(t, opts), repo, workers, pacing), repo
}

func waitTerminal(t *testing.T, b *BulkService, runID string) *domain.BulkSnapshot {
	t.Helper()
	var snap *domain.BulkSnapshot
	require.Eventually(t, func() bool {
		s, err := b.Get(runID)
		if err != nil {
			return false
		}
		if s.Status == domain.RunRunning {
			return false
		}
		snap = s
		return true
	}, 5*time.Second, 10*time.Millisecond)
	return snap
}

func TestBulkRunCoversEverySlot(t *testing.T) {
	b, repo := newTestBulk(t, serviceOpts{}, 2, 0)

	ids := []string{"stream-A", "cache-B", "db-C"}
	snap, err := b.Start("performance", ids, resources.RangeLastDay)
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, snap.Status)
	assert.Equal(t, 3, snap.Progress.Total)

	final := waitTerminal(t, b, snap.RunID)
	assert.Equal(t, domain.RunCompleted, final.Status)
	assert.Equal(t, 3, final.Progress.Completed)
	require.Len(t, final.Results, len(ids))

	// every resource appears exactly once, in request order
	for i, id := range ids {
		assert.Equal(t, id, final.Results[i].ResourceID)
		assert.Equal(t, domain.EntrySucceeded, final.Results[i].Status)
		require.NotNil(t, final.Results[i].Result)
	}
	require.NotNil(t, final.FinishedAt)

	// terminal snapshot persisted once; the write happens just after the
	// status flip, so poll for it
	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.snaps) == 1
	}, time.Second, 5*time.Millisecond)
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, domain.RunCompleted, repo.snaps[0].Status)
}

func TestBulkOneFailureDoesNotAbortRun(t *testing.T) {
	g := &fakeGatherer{series: testSeries(), errFor: "cache-B"}
	b, _ := newTestBulk(t, serviceOpts{gatherer: g}, 2, 0)

	ids := []string{"stream-A", "cache-B", "db-C", "stream-A", "db-C"}
	snap, err := b.Start("performance", ids, "")
	require.NoError(t, err)

	final := waitTerminal(t, b, snap.RunID)
	assert.Equal(t, domain.RunCompleted, final.Status)
	assert.Equal(t, 5, final.Progress.Completed)

	var failed, ok int
	for _, e := range final.Results {
		switch e.Status {
		case domain.EntryFailed:
			failed++
			assert.Equal(t, "cache-B", e.ResourceID)
			assert.NotEmpty(t, e.Error)
		case domain.EntrySucceeded:
			ok++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 4, ok)
}

func TestBulkStartValidation(t *testing.T) {
	b, _ := newTestBulk(t, serviceOpts{}, 1, 0)

	_, err := b.Start("performance", nil, "")
	assert.Error(t, err)

	_, err = b.Start("no-such-workflow", []string{"stream-A"}, "")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestBulkCancelSkipsUndispatched(t *testing.T) {
	// single worker with pacing so later slots are still queued when we cancel
	b, _ := newTestBulk(t, serviceOpts{}, 1, 50*time.Millisecond)

	ids := make([]string, 20)
	for i := range ids {
		ids[i] = "stream-A"
	}
	snap, err := b.Start("performance", ids, "")
	require.NoError(t, err)

	require.NoError(t, b.Cancel(snap.RunID))

	final := waitTerminal(t, b, snap.RunID)
	assert.Equal(t, domain.RunCanceled, final.Status)
	assert.Equal(t, len(ids), final.Progress.Completed)

	var skipped, finished int
	for _, e := range final.Results {
		switch e.Status {
		case domain.EntrySkipped:
			skipped++
		case domain.EntrySucceeded, domain.EntryFailed:
			finished++
		}
	}
	assert.Positive(t, skipped)
	assert.Equal(t, len(ids), skipped+finished)
}

func TestBulkGetUnknownRun(t *testing.T) {
	b, _ := newTestBulk(t, serviceOpts{}, 1, 0)
	_, err := b.Get("nope")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
	assert.ErrorIs(t, b.Cancel("nope"), domain.ErrRunNotFound)
}

func TestExportCSV(t *testing.T) {
	g := &fakeGatherer{series: testSeries(), errFor: "cache-B"}
	audit := &memAudit{}
	b, _ := newTestBulk(t, serviceOpts{gatherer: g, audit: audit}, 2, 0)

	snap, err := b.Start("performance", []string{"stream-A", "cache-B"}, "")
	require.NoError(t, err)
	waitTerminal(t, b, snap.RunID)

	out, err := b.ExportCSV(context.Background(), snap.RunID)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "resource_id,name,type,region,account,status,summary,timestamp", lines[0])
	assert.Contains(t, lines[1], "stream-A")
	assert.Contains(t, lines[1], "succeeded")
	assert.Contains(t, lines[2], "cache-B")
	assert.Contains(t, lines[2], "failed")

	// a copy lands next to the run's audit objects
	audit.mu.Lock()
	defer audit.mu.Unlock()
	assert.Contains(t, audit.keys, "bulk/"+snap.RunID+"/export.csv")
}
