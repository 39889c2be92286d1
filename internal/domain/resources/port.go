package resources

import (
	"context"
	"errors"
)

// ErrNotFound indicates the inventory has no resource with the given id.
var ErrNotFound = errors.New("resource not found")

// Directory port (interface to the external resource inventory)
type Directory interface {
	Lookup(ctx context.Context, id string) (ResourceRef, error)
}
