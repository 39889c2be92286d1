package failures

import "context"

// Repository port for persisting and listing analysis failures
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	Recent(ctx context.Context, limit int) ([]*Failure, error)
}
