package pattern

import (
	"context"
	"fmt"

	"github.com/cloudscope/cloudscope/internal/domain/ai"
	"github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
	"github.com/cloudscope/cloudscope/internal/infra/ai/prompt"
)

// Analyzer is the LLM-driven strategy. It templates the gathered data into a
// prompt, delegates to the completion client, and extracts related questions
// from the response.
type Analyzer struct {
	client ai.Client
}

func NewAnalyzer(client ai.Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze renders the workflow's prompt template and interprets the model
// response. Both failure modes (no provider, provider error) are recoverable
// at the selector level, not here.
func (p *Analyzer) Analyze(ctx context.Context, resource resources.ResourceRef, wf workflows.Workflow, series []telemetry.MetricSeries) (analysis.Result, error) {
	if p.client == nil {
		return analysis.Result{}, ai.ErrProviderUnavailable
	}

	system := prompt.System(wf.PromptTemplateID)
	user := prompt.User(resource, wf, series)

	raw, err := p.client.Complete(ctx, system, user)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%w: %v", ai.ErrProviderError, err)
	}

	content, questions := prompt.SplitRelatedQuestions(raw)
	return analysis.Result{
		Content:          content,
		Format:           analysis.FormatMarkdown,
		RelatedQuestions: questions,
		Metadata: analysis.Metadata{
			AnalyzerUsed: analysis.AnalyzerPattern,
		},
	}, nil
}
