package workflows

import "github.com/cloudscope/cloudscope/internal/domain/resources"

// Workflow is a named, pre-defined analysis recipe tied to resource types.
// Workflows are defined at catalog load time and read-only at runtime.
type Workflow struct {
	ID               string                   `json:"workflow_id" yaml:"id"`
	DisplayName      string                   `json:"display_name" yaml:"display_name"`
	Description      string                   `json:"description" yaml:"description"`
	ResourceTypes    []resources.ResourceType `json:"applicable_resource_types" yaml:"resource_types"`
	RequiredMetrics  []string                 `json:"required_metrics" yaml:"required_metrics"`
	PromptTemplateID string                   `json:"prompt_template_id" yaml:"prompt_template"`
	RequiresPattern  bool                     `json:"requires_pattern_analyzer" yaml:"requires_pattern"`

	// Question carries the free text of an ad-hoc follow-up. Only set on
	// synthetic descriptors built by the Q&A handler, never on catalog entries.
	Question string `json:"-" yaml:"-"`
}

// AppliesTo reports whether the workflow supports the given resource type.
// Synthetic descriptors carry no type list and apply to everything.
func (w Workflow) AppliesTo(t resources.ResourceType) bool {
	if len(w.ResourceTypes) == 0 {
		return true
	}
	for _, rt := range w.ResourceTypes {
		if rt == t {
			return true
		}
	}
	return false
}
