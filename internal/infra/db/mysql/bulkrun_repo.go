package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
)

type BulkRunRepository struct {
	db *sql.DB
}

func NewBulkRunRepository(db *sql.DB) *BulkRunRepository {
	return &BulkRunRepository{db: db}
}

// SaveRun persists a terminal run snapshot for audit.
func (r *BulkRunRepository) SaveRun(ctx context.Context, snap *domain.BulkSnapshot) error {
	const q = `
INSERT INTO bulk_runs
  (run_id, workflow_id, status, completed, total, results_json, started_at, finished_at)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  status=VALUES(status), completed=VALUES(completed),
  results_json=VALUES(results_json), finished_at=VALUES(finished_at);
`
	results, err := json.Marshal(snap.Results)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		snap.RunID, stringOrDash(snap.WorkflowID), string(snap.Status),
		snap.Progress.Completed, snap.Progress.Total,
		string(results), snap.StartedAt, snap.FinishedAt,
	)
	return err
}
