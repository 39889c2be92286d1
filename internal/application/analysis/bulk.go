package analysis

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

// BulkService sequences the single-resource orchestrator over a resource set
// with bounded concurrency. A failure on one resource is recorded as an error
// entry and never aborts the run.
type BulkService struct {
	Single   *Service
	BulkRepo domain.BulkRepository

	// Workers bounds in-flight analyses so the telemetry and model backends
	// are not overwhelmed. Pacing adds a delay between dispatches; mostly
	// useful with Workers=1 for strictly sequential runs.
	Workers int
	Pacing  time.Duration

	mu   sync.RWMutex
	runs map[string]*runHandle
}

type runHandle struct {
	run    *domain.BulkRun
	cancel context.CancelFunc
}

func NewBulkService(single *Service, bulkRepo domain.BulkRepository, workers int, pacing time.Duration) *BulkService {
	if workers <= 0 {
		workers = 3
	}
	return &BulkService{
		Single:   single,
		BulkRepo: bulkRepo,
		Workers:  workers,
		Pacing:   pacing,
		runs:     make(map[string]*runHandle),
	}
}

// Start validates the request, registers a run handle and returns it
// immediately; the run proceeds in the background until every resource has a
// success or error entry.
func (b *BulkService) Start(workflowID string, resourceIDs []string, rng resources.TimeRange) (*domain.BulkSnapshot, error) {
	if len(resourceIDs) == 0 {
		return nil, fmt.Errorf("resource_ids must not be empty")
	}
	if _, ok := b.Single.Catalog.Get(workflowID); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID)
	}

	run := domain.NewBulkRun(uuid.New().String(), workflowID, resourceIDs, b.Single.Clock.Now().UTC())

	// background context: the run outlives the HTTP request that started it
	ctx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.runs[run.ID()] = &runHandle{run: run, cancel: cancel}
	b.mu.Unlock()

	go b.execute(ctx, run, rng)
	return run.Snapshot(), nil
}

// execute fans the resource set out over a bounded worker group. Each slot is
// pre-assigned to exactly one resource, so no resource is analyzed twice and
// the resource→result mapping is exact regardless of completion order.
func (b *BulkService) execute(ctx context.Context, run *domain.BulkRun, rng resources.TimeRange) {
	g := &errgroup.Group{}
	g.SetLimit(b.Workers)

	canceled := false
	for i := 0; i < run.Size(); i++ {
		if ctx.Err() != nil {
			// cancellation stops dispatch; in-flight workers finish and
			// recorded results are retained
			canceled = true
			run.RecordSkipped(i)
			continue
		}
		if b.Pacing > 0 && i > 0 {
			select {
			case <-time.After(b.Pacing):
			case <-ctx.Done():
			}
		}
		i := i
		g.Go(func() error {
			// deliberately not the run's cancel context: canceling a run
			// stops dispatch but lets in-flight analyses complete
			rec, err := b.Single.Analyze(context.Background(), AnalyzeCommand{
				ResourceID: run.ResourceID(i),
				WorkflowID: run.WorkflowID(),
				Range:      rng,
			})
			if err != nil {
				run.RecordFailure(i, resources.ResourceRef{ID: run.ResourceID(i)}, err)
				return nil
			}
			ref := resources.ResourceRef{
				ID:   rec.ResourceID,
				Type: rec.ResourceType,
			}
			run.RecordSuccess(i, ref, &rec.Result)
			return nil
		})
	}
	_ = g.Wait()

	status := domain.RunCompleted
	if canceled {
		status = domain.RunCanceled
	}
	run.Finish(status, b.Single.Clock.Now().UTC())

	if b.BulkRepo != nil {
		if err := b.BulkRepo.SaveRun(context.Background(), run.Snapshot()); err != nil {
			log.Printf("bulk run %s persist failed: %v", run.ID(), err)
		}
	}
}

// Get returns a snapshot of the run's current state.
func (b *BulkService) Get(runID string) (*domain.BulkSnapshot, error) {
	b.mu.RLock()
	h, ok := b.runs[runID]
	b.mu.RUnlock()
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return h.run.Snapshot(), nil
}

// Cancel stops dispatch of not-yet-started resources. In-flight analyses
// complete and keep their entries.
func (b *BulkService) Cancel(runID string) error {
	b.mu.RLock()
	h, ok := b.runs[runID]
	b.mu.RUnlock()
	if !ok {
		return domain.ErrRunNotFound
	}
	h.cancel()
	return nil
}
