package directory

import (
	"context"
	"fmt"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

// Static serves config-listed resources when no inventory service is
// configured, keeping the binary runnable standalone.
type Static struct {
	byID map[string]resources.ResourceRef
}

func NewStatic(refs []resources.ResourceRef) *Static {
	m := make(map[string]resources.ResourceRef, len(refs))
	for _, r := range refs {
		m[r.ID] = r
	}
	return &Static{byID: m}
}

func (s *Static) Lookup(ctx context.Context, id string) (resources.ResourceRef, error) {
	ref, ok := s.byID[id]
	if !ok {
		return resources.ResourceRef{}, fmt.Errorf("%w: %s", resources.ErrNotFound, id)
	}
	return ref, nil
}
