package analysis

import (
	"time"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

// Format enum for result presentation
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatHTML     Format = "html"
	FormatImageRef Format = "image_ref"
)

// AnalyzerKind enum: which strategy produced a result
type AnalyzerKind string

const (
	AnalyzerMetrics AnalyzerKind = "metrics"
	AnalyzerPattern AnalyzerKind = "pattern"
)

// Metadata describes how a result was produced.
type Metadata struct {
	Timestamp    time.Time    `json:"timestamp"`
	DataSources  []string     `json:"data_sources"`
	AnalyzerUsed AnalyzerKind `json:"analyzer_used"`
	Notes        []string     `json:"notes,omitempty"`
}

// Result is the unit returned to callers. Immutable once produced.
type Result struct {
	Content          string   `json:"content"`
	Format           Format   `json:"format"`
	RelatedQuestions []string `json:"related_questions"`
	Metadata         Metadata `json:"metadata"`
}

// DefaultRelatedQuestions is the generic follow-up set used whenever an
// analyzer returns none. The UI contract requires at least one option.
func DefaultRelatedQuestions(t resources.ResourceType) []string {
	return []string{
		"What changed on this resource in the last 24 hours?",
		"How does this " + string(t) + " compare to others in the same region?",
		"What would reduce the cost of this resource?",
	}
}

// Record is a persisted (request, result) pair kept for later retrieval.
type Record struct {
	ID           string                 `json:"id"`
	ResourceID   string                 `json:"resource_id"`
	ResourceType resources.ResourceType `json:"resource_type"`
	WorkflowID   string                 `json:"workflow_id"`
	Question     string                 `json:"question,omitempty"`
	Result       Result                 `json:"result"`
	AuditKey     string                 `json:"audit_key,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}
