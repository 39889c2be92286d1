package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/cloudscope/cloudscope/internal/domain/failures"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository {
	return &FailureRepository{db: db}
}

// Save inserts a failure record.
func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_failures
  (id, resource_id, workflow_id, stage, message, created_at)
VALUES (?,?,?,?,?,?);
`
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		f.ID, stringOrDash(f.ResourceID), f.WorkflowID, stringOrDash(f.Stage), f.Message, createdAt,
	)
	return err
}

// Recent lists the latest failures.
func (r *FailureRepository) Recent(ctx context.Context, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, resource_id, workflow_id, stage, message, created_at
FROM analysis_failures
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Failure
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.ResourceID, &f.WorkflowID, &f.Stage, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
