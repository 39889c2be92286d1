package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

func TestCatalogListUnknownTypeIsEmpty(t *testing.T) {
	c, err := NewCatalog(Defaults())
	require.NoError(t, err)

	list := c.List(resources.ResourceType("load-balancer"))
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestCatalogListSortedByID(t *testing.T) {
	c, err := NewCatalog(Defaults())
	require.NoError(t, err)

	list := c.List(resources.TypeKinesisStream)
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}

func TestCatalogGet(t *testing.T) {
	c, err := NewCatalog(Defaults())
	require.NoError(t, err)

	wf, ok := c.Get("performance")
	require.True(t, ok)
	assert.Equal(t, "performance", wf.ID)
	assert.Contains(t, wf.RequiredMetrics, "IteratorAgeMilliseconds")

	_, ok = c.Get("no-such-workflow")
	assert.False(t, ok)
}

func TestCatalogConfigOverridesDefaults(t *testing.T) {
	defs := append(Defaults(), Workflow{
		ID:               "performance",
		DisplayName:      "Custom performance",
		ResourceTypes:    []resources.ResourceType{resources.TypeEC2Instance},
		RequiredMetrics:  []string{"CPUUtilization"},
		PromptTemplateID: "performance",
	})
	c, err := NewCatalog(defs)
	require.NoError(t, err)

	wf, ok := c.Get("performance")
	require.True(t, ok)
	assert.Equal(t, "Custom performance", wf.DisplayName)

	// the override applies only to ec2 now
	assert.Empty(t, filterByID(c.List(resources.TypeKinesisStream), "performance"))
	assert.NotEmpty(t, filterByID(c.List(resources.TypeEC2Instance), "performance"))
}

func TestCatalogRejectsEmptyID(t *testing.T) {
	_, err := NewCatalog([]Workflow{{DisplayName: "nameless", RequiredMetrics: []string{"CPUUtilization"}}})
	assert.Error(t, err)
}

func TestWorkflowAppliesTo(t *testing.T) {
	wf := Workflow{ID: "x", ResourceTypes: []resources.ResourceType{resources.TypeCacheCluster}}
	assert.True(t, wf.AppliesTo(resources.TypeCacheCluster))
	assert.False(t, wf.AppliesTo(resources.TypeRDSCluster))

	// synthetic descriptors have no type list and apply to everything
	synthetic := Workflow{ID: "qna"}
	assert.True(t, synthetic.AppliesTo(resources.TypeRDSCluster))
}

func filterByID(list []Workflow, id string) []Workflow {
	var out []Workflow
	for _, w := range list {
		if w.ID == id {
			out = append(out, w)
		}
	}
	return out
}
