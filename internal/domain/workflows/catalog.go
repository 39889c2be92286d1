package workflows

import (
	"fmt"
	"sort"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

// Catalog maps resource types to the workflows they support. Built once at
// startup, read-only afterwards, safe for unsynchronized concurrent use.
type Catalog struct {
	byID   map[string]Workflow
	byType map[resources.ResourceType][]Workflow
}

// NewCatalog builds the lookup maps from the given definitions. Definitions
// with a duplicate id override earlier ones, so config entries can replace
// the built-in defaults.
func NewCatalog(defs []Workflow) (*Catalog, error) {
	c := &Catalog{
		byID:   make(map[string]Workflow),
		byType: make(map[resources.ResourceType][]Workflow),
	}
	for _, w := range defs {
		if w.ID == "" {
			return nil, fmt.Errorf("workflow with empty id (display_name=%q)", w.DisplayName)
		}
		if len(w.RequiredMetrics) == 0 && !w.RequiresPattern {
			return nil, fmt.Errorf("workflow %s: no required metrics and no pattern analyzer requirement", w.ID)
		}
		c.byID[w.ID] = w
	}
	for _, w := range c.byID {
		for _, t := range w.ResourceTypes {
			c.byType[t] = append(c.byType[t], w)
		}
	}
	// deterministic listing order
	for t := range c.byType {
		list := c.byType[t]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return c, nil
}

// Get returns the workflow by id.
func (c *Catalog) Get(id string) (Workflow, bool) {
	w, ok := c.byID[id]
	return w, ok
}

// List returns the workflows applicable to the resource type, sorted by id.
// Unknown resource types yield an empty list, not an error.
func (c *Catalog) List(t resources.ResourceType) []Workflow {
	list := c.byType[t]
	out := make([]Workflow, len(list))
	copy(out, list)
	return out
}

// Defaults returns the built-in workflow set. Config-defined workflows are
// appended after these and may override them by id.
func Defaults() []Workflow {
	return []Workflow{
		{
			ID:          "performance",
			DisplayName: "Performance analysis",
			Description: "Latency, throughput and saturation review over the selected window.",
			ResourceTypes: []resources.ResourceType{
				resources.TypeEC2Instance,
				resources.TypeCacheCluster,
				resources.TypeKinesisStream,
				resources.TypeRDSCluster,
			},
			RequiredMetrics: []string{
				"CPUUtilization",
				"IteratorAgeMilliseconds",
				"ReadLatency",
				"NetworkIn",
			},
			PromptTemplateID: "performance",
		},
		{
			ID:          "cost",
			DisplayName: "Cost analysis",
			Description: "Estimated spend and right-sizing opportunities.",
			ResourceTypes: []resources.ResourceType{
				resources.TypeEC2Instance,
				resources.TypeCacheCluster,
				resources.TypeRDSCluster,
			},
			RequiredMetrics: []string{
				"CPUUtilization",
				"MemoryUtilization",
			},
			PromptTemplateID: "cost",
		},
		{
			ID:          "unused-detection",
			DisplayName: "Unused resource detection",
			Description: "Flags resources that look idle over the selected window.",
			ResourceTypes: []resources.ResourceType{
				resources.TypeEC2Instance,
				resources.TypeCacheCluster,
				resources.TypeKinesisStream,
			},
			RequiredMetrics: []string{
				"CPUUtilization",
				"NetworkIn",
				"IncomingRecords",
			},
			PromptTemplateID: "unused",
		},
		{
			ID:          "error-analysis",
			DisplayName: "Error pattern analysis",
			Description: "Interprets error and fault metrics; needs the pattern analyzer.",
			ResourceTypes: []resources.ResourceType{
				resources.TypeKinesisStream,
				resources.TypeRDSCluster,
			},
			RequiredMetrics: []string{
				"Errors",
				"ThrottledRequests",
			},
			PromptTemplateID: "errors",
			RequiresPattern:  true,
		},
	}
}
