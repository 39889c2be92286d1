package analysis

import "context"

// Repository port for persisting and querying analysis records
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Paginate(ctx context.Context, page, pageSize int) ([]*Record, error)
}

// BulkRepository port for persisting terminal bulk runs
type BulkRepository interface {
	SaveRun(ctx context.Context, snap *BulkSnapshot) error
}

// AuditStore port for the raw input/output audit trail. Keys follow a
// per-resource, per-day convention so an analysis can be replayed without
// re-querying telemetry.
type AuditStore interface {
	PutJSON(ctx context.Context, key string, v any) (string, error)
	PutCSV(ctx context.Context, key string, data []byte) (string, error)
}
