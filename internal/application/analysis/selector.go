package analysis

import (
	"context"
	"fmt"

	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
)

// MetricsAnalyzer is the deterministic strategy. It cannot fail.
type MetricsAnalyzer interface {
	Analyze(resource resources.ResourceRef, wf workflows.Workflow, series []telemetry.MetricSeries) domain.Result
}

// PatternAnalyzer is the LLM-driven strategy.
type PatternAnalyzer interface {
	Analyze(ctx context.Context, resource resources.ResourceRef, wf workflows.Workflow, series []telemetry.MetricSeries) (domain.Result, error)
}

// Selector holds the fallback policy between the two strategies. Provider
// availability is passed in explicitly so tests can toggle it per case.
type Selector struct {
	metrics           MetricsAnalyzer
	pattern           PatternAnalyzer
	patternConfigured bool
}

func NewSelector(metrics MetricsAnalyzer, pattern PatternAnalyzer, patternConfigured bool) *Selector {
	return &Selector{metrics: metrics, pattern: pattern, patternConfigured: patternConfigured}
}

// SelectAndRun picks a strategy per the fallback policy:
//
//  1. workflow requires the pattern analyzer and none is configured →
//     ErrWorkflowUnsupported, no deterministic fallback exists.
//  2. pattern analyzer configured → try it first; on any analyzer error fall
//     back to the metrics analyzer and note the fallback in metadata (unless
//     the workflow requires pattern output, in which case the error surfaces).
//  3. no pattern analyzer configured → metrics analyzer unconditionally.
//
// The chosen strategy is always visible in result metadata.
func (s *Selector) SelectAndRun(ctx context.Context, resource resources.ResourceRef, wf workflows.Workflow, series []telemetry.MetricSeries) (domain.Result, error) {
	if wf.RequiresPattern && !s.patternConfigured {
		return domain.Result{}, fmt.Errorf("%w: workflow %s", domain.ErrWorkflowUnsupported, wf.ID)
	}

	if s.patternConfigured {
		res, err := s.pattern.Analyze(ctx, resource, wf, series)
		if err == nil {
			return res, nil
		}
		if wf.RequiresPattern {
			return domain.Result{}, fmt.Errorf("pattern analyzer failed for workflow %s: %w", wf.ID, err)
		}
		res = s.metrics.Analyze(resource, wf, series)
		res.Metadata.Notes = append(res.Metadata.Notes,
			fmt.Sprintf("pattern analyzer failed (%v); fell back to metrics analyzer", err))
		return res, nil
	}

	return s.metrics.Analyze(resource, wf, series), nil
}
