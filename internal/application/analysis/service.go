package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/cloudscope/cloudscope/internal/application"
	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/failures"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
)

// Service implements the single-resource analysis use-cases. Safe for
// concurrent use; all mutable state lives behind its ports.
type Service struct {
	Directory resources.Directory
	Catalog   *workflows.Catalog
	Gatherer  telemetry.Gatherer
	Selector  *Selector
	Assembler Assembler
	Repo      domain.Repository
	Audit     domain.AuditStore
	Failures  failures.Repository
	Clock     application.Clock
}

// AnalyzeCommand runs a fixed workflow against one resource.
type AnalyzeCommand struct {
	ResourceID string
	WorkflowID string
	Range      resources.TimeRange
}

// AskCommand re-enters the pipeline with a free-form question instead of a
// fixed workflow id.
type AskCommand struct {
	ResourceID      string
	Question        string
	PriorWorkflowID string
	Range           resources.TimeRange
}

// Analyze runs one (resource, workflow) request end-to-end: resolve →
// gather → select strategy → assemble → persist. Retries live in the
// gatherer and the selector's fallback, not here.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*domain.Record, error) {
	ref, err := s.Directory.Lookup(ctx, cmd.ResourceID)
	if err != nil {
		return nil, s.fail(ctx, "resolve", cmd.ResourceID, cmd.WorkflowID, err)
	}

	wf, ok := s.Catalog.Get(cmd.WorkflowID)
	if !ok || !wf.AppliesTo(ref.Type) {
		err := fmt.Errorf("%w: %s for resource type %s", domain.ErrWorkflowNotFound, cmd.WorkflowID, ref.Type)
		return nil, s.fail(ctx, "workflow", cmd.ResourceID, cmd.WorkflowID, err)
	}

	return s.run(ctx, ref, wf, cmd.Range)
}

// Ask answers a free-text question about a resource. A synthetic workflow
// descriptor carries the question through the exact same selector and
// assembly path as fixed workflows; there is deliberately no separate code
// path beyond descriptor construction.
func (s *Service) Ask(ctx context.Context, cmd AskCommand) (*domain.Record, error) {
	ref, err := s.Directory.Lookup(ctx, cmd.ResourceID)
	if err != nil {
		return nil, s.fail(ctx, "resolve", cmd.ResourceID, cmd.PriorWorkflowID, err)
	}

	metrics := workflows.DefaultMetricSet(ref.Type)
	if cmd.PriorWorkflowID != "" {
		prior, ok := s.Catalog.Get(cmd.PriorWorkflowID)
		if !ok {
			err := fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, cmd.PriorWorkflowID)
			return nil, s.fail(ctx, "workflow", cmd.ResourceID, cmd.PriorWorkflowID, err)
		}
		metrics = prior.RequiredMetrics
	}

	synthetic := workflows.Workflow{
		ID:               "qna",
		DisplayName:      "Follow-up question",
		Description:      "Ad-hoc question routed through the analysis pipeline.",
		RequiredMetrics:  metrics,
		PromptTemplateID: "question",
		Question:         cmd.Question,
	}
	return s.run(ctx, ref, synthetic, cmd.Range)
}

func (s *Service) run(ctx context.Context, ref resources.ResourceRef, wf workflows.Workflow, rng resources.TimeRange) (*domain.Record, error) {
	if !rng.Valid() {
		rng = resources.DefaultRange
	}
	query := telemetry.MetricQuery{
		Resource:    ref,
		MetricNames: wf.RequiredMetrics,
		Range:       rng,
	}

	series, err := s.Gatherer.Fetch(ctx, query)
	var missing []string
	if err != nil {
		var partial *telemetry.PartialDataError
		if errors.As(err, &partial) {
			// non-fatal: proceed with the series we did get
			series = partial.Series
			missing = partial.Missing
		} else {
			return nil, s.fail(ctx, "telemetry", ref.ID, wf.ID, err)
		}
	}

	res, err := s.Selector.SelectAndRun(ctx, ref, wf, series)
	if err != nil {
		return nil, s.fail(ctx, "analyze", ref.ID, wf.ID, err)
	}
	res = s.Assembler.Assemble(res, ref, query, missing)

	rec := &domain.Record{
		ID:           uuid.New().String(),
		ResourceID:   ref.ID,
		ResourceType: ref.Type,
		WorkflowID:   wf.ID,
		Question:     wf.Question,
		Result:       res,
		CreatedAt:    s.Clock.Now().UTC(),
	}

	// audit objects keyed per resource type, id and day so a request can be
	// replayed without re-querying telemetry; best-effort
	base := fmt.Sprintf("%s/%s/%s/%s", ref.Type, ref.ID, rec.CreatedAt.Format("2006-01-02"), rec.ID)
	if s.Audit != nil {
		input := struct {
			Query  telemetry.MetricQuery    `json:"query"`
			Series []telemetry.MetricSeries `json:"series"`
		}{query, series}
		if _, err := s.Audit.PutJSON(ctx, base+"-input.json", input); err != nil {
			log.Printf("audit input write failed for %s: %v", rec.ID, err)
		}
		if key, err := s.Audit.PutJSON(ctx, base+"-result.json", rec); err != nil {
			log.Printf("audit result write failed for %s: %v", rec.ID, err)
		} else {
			rec.AuditKey = key
		}
	}

	if err := s.Repo.Save(ctx, rec); err != nil {
		return nil, s.fail(ctx, "persist", ref.ID, wf.ID, err)
	}
	return rec, nil
}

// fail records the failure for operator review and wraps it with request
// context. Sentinel errors stay reachable through errors.Is.
func (s *Service) fail(ctx context.Context, stage, resourceID, workflowID string, err error) error {
	if s.Failures != nil {
		f := &failures.Failure{
			ID:         uuid.New().String(),
			ResourceID: resourceID,
			WorkflowID: workflowID,
			Stage:      stage,
			Message:    err.Error(),
			CreatedAt:  s.Clock.Now().UTC(),
		}
		if serr := s.Failures.Save(ctx, f); serr != nil {
			log.Printf("failure log write failed: %v", serr)
		}
	}
	return &domain.OrchestratorError{Stage: stage, ResourceID: resourceID, WorkflowID: workflowID, Err: err}
}

// Workflows lists the workflows applicable to a resource type. Unknown types
// yield an empty, displayable list.
func (s *Service) Workflows(t resources.ResourceType) []workflows.Workflow {
	return s.Catalog.List(t)
}

// Get returns one persisted analysis by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Record, error) {
	return s.Repo.Get(ctx, id)
}

// List returns a page of persisted analyses, newest first.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	return s.Repo.Paginate(ctx, page, pageSize)
}

// RecentFailures lists the latest recorded analysis failures.
func (s *Service) RecentFailures(ctx context.Context, limit int) ([]*failures.Failure, error) {
	if s.Failures == nil {
		return nil, nil
	}
	return s.Failures.Recent(ctx, limit)
}
