package analysis

import (
	"fmt"

	"github.com/cloudscope/cloudscope/internal/application"
	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
)

// Assembler normalizes analyzer output into the canonical result envelope.
// Pure transformation, no I/O.
type Assembler struct {
	Clock application.Clock
}

// Assemble guarantees non-empty related questions, stamps the timestamp and
// data sources, and records the partial-data caveat when metrics were
// missing.
func (a Assembler) Assemble(res domain.Result, resource resources.ResourceRef, q telemetry.MetricQuery, missing []string) domain.Result {
	if res.Format == "" {
		res.Format = domain.FormatMarkdown
	}
	if len(res.RelatedQuestions) == 0 {
		res.RelatedQuestions = domain.DefaultRelatedQuestions(resource.Type)
	}
	res.Metadata.Timestamp = a.Clock.Now().UTC()
	if len(res.Metadata.DataSources) == 0 {
		for _, m := range q.MetricNames {
			res.Metadata.DataSources = append(res.Metadata.DataSources, "telemetry:"+m)
		}
	}
	if len(missing) > 0 {
		res.Metadata.Notes = append(res.Metadata.Notes,
			fmt.Sprintf("partial data: no telemetry for %d of %d requested metrics", len(missing), len(q.MetricNames)))
	}
	return res
}
