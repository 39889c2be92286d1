package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record; replays of the same id update the result.
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analysis_records
  (id, resource_id, resource_type, workflow_id, question, result_json, audit_key, created_at)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  result_json=VALUES(result_json), audit_key=VALUES(audit_key);
`
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, q,
		rec.ID, stringOrDash(rec.ResourceID), stringOrDash(string(rec.ResourceType)),
		stringOrDash(rec.WorkflowID), rec.Question, string(result), rec.AuditKey, createdAt,
	)
	return err
}

// Get returns one record by id.
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	const q = `
SELECT id, resource_id, resource_type, workflow_id, question, result_json, audit_key, created_at
FROM analysis_records
WHERE id=? LIMIT 1;
`
	return scanRecord(r.db.QueryRowContext(ctx, q, id))
}

// Paginate returns a page of records ordered by created_at desc.
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, resource_id, resource_type, workflow_id, question, result_json, audit_key, created_at
FROM analysis_records
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var rtype, result string
	if err := row.Scan(
		&rec.ID, &rec.ResourceID, &rtype, &rec.WorkflowID, &rec.Question,
		&result, &rec.AuditKey, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.ResourceType = resources.ResourceType(rtype)
	if err := json.Unmarshal([]byte(result), &rec.Result); err != nil {
		return nil, err
	}
	return &rec, nil
}
