package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
)

func TestSelectorRequiresPatternWithoutProvider(t *testing.T) {
	s := NewSelector(fakeMetricsAnalyzer{}, nil, false)
	wf := workflows.Workflow{ID: "error-analysis", RequiresPattern: true}

	_, err := s.SelectAndRun(context.Background(), testRefs()["stream-A"], wf, nil)
	assert.ErrorIs(t, err, domain.ErrWorkflowUnsupported)
}

func TestSelectorRequiresPatternProviderFailureSurfaces(t *testing.T) {
	p := &fakePatternAnalyzer{err: errors.New("model timeout")}
	s := NewSelector(fakeMetricsAnalyzer{}, p, true)
	wf := workflows.Workflow{ID: "error-analysis", RequiresPattern: true}

	_, err := s.SelectAndRun(context.Background(), testRefs()["stream-A"], wf, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model timeout")
}

func TestSelectorPrefersPatternWhenConfigured(t *testing.T) {
	p := &fakePatternAnalyzer{res: domain.Result{
		Content:  "model output",
		Metadata: domain.Metadata{AnalyzerUsed: domain.AnalyzerPattern},
	}}
	s := NewSelector(fakeMetricsAnalyzer{}, p, true)
	wf := workflows.Workflow{ID: "performance"}

	res, err := s.SelectAndRun(context.Background(), testRefs()["stream-A"], wf, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AnalyzerPattern, res.Metadata.AnalyzerUsed)
	assert.Empty(t, res.Metadata.Notes)
}

func TestSelectorFallsBackAndNotes(t *testing.T) {
	p := &fakePatternAnalyzer{err: errors.New("rate limited")}
	s := NewSelector(fakeMetricsAnalyzer{}, p, true)
	wf := workflows.Workflow{ID: "performance"}

	res, err := s.SelectAndRun(context.Background(), testRefs()["stream-A"], wf, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AnalyzerMetrics, res.Metadata.AnalyzerUsed)
	require.Len(t, res.Metadata.Notes, 1)
	assert.Contains(t, res.Metadata.Notes[0], "rate limited")
	assert.Contains(t, res.Metadata.Notes[0], "fell back")
}

func TestSelectorMetricsOnlyWhenUnconfigured(t *testing.T) {
	// a pattern analyzer instance may exist but remain unconfigured; it must
	// never be called
	p := &fakePatternAnalyzer{res: domain.Result{Content: "should not appear"}}
	s := NewSelector(fakeMetricsAnalyzer{}, p, false)
	wf := workflows.Workflow{ID: "performance"}

	res, err := s.SelectAndRun(context.Background(), testRefs()["stream-A"], wf, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AnalyzerMetrics, res.Metadata.AnalyzerUsed)
	assert.NotEqual(t, "should not appear", res.Content)
}
