package analysis

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strings"

	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
)

const summaryMaxLen = 120

// ExportCSV renders a run's results as a flat delimited table for offline
// review and uploads a copy next to the run's audit objects.
func (b *BulkService) ExportCSV(ctx context.Context, runID string) ([]byte, error) {
	snap, err := b.Get(runID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"resource_id", "name", "type", "region", "account", "status", "summary", "timestamp"})
	for _, e := range snap.Results {
		row := []string{
			e.ResourceID,
			e.Resource.Name,
			string(e.Resource.Type),
			e.Resource.Region,
			e.Resource.Account,
			string(e.Status),
			entrySummary(e),
			entryTimestamp(e),
		}
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}

	if b.Single.Audit != nil {
		key := fmt.Sprintf("bulk/%s/export.csv", snap.RunID)
		if _, err := b.Single.Audit.PutCSV(ctx, key, buf.Bytes()); err != nil {
			log.Printf("bulk export upload failed for %s: %v", snap.RunID, err)
		}
	}
	return buf.Bytes(), nil
}

// entrySummary takes the first line of the result content, truncated, or the
// error message for failed entries.
func entrySummary(e domain.BulkEntry) string {
	var s string
	switch {
	case e.Result != nil:
		s = e.Result.Content
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimLeft(s, "# ")
	default:
		s = e.Error
	}
	if len(s) > summaryMaxLen {
		s = s[:summaryMaxLen] + "..."
	}
	return s
}

func entryTimestamp(e domain.BulkEntry) string {
	if e.Result == nil {
		return ""
	}
	return e.Result.Metadata.Timestamp.Format("2006-01-02T15:04:05Z07:00")
}
