package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudscope/cloudscope/internal/application"
	appanalysis "github.com/cloudscope/cloudscope/internal/application/analysis"
	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
	"github.com/cloudscope/cloudscope/internal/domain/workflows"
	"github.com/cloudscope/cloudscope/internal/infra/directory"
	"github.com/cloudscope/cloudscope/internal/infra/rules"
)

type stubGatherer struct{}

func (stubGatherer) Fetch(ctx context.Context, q telemetry.MetricQuery) ([]telemetry.MetricSeries, error) {
	return []telemetry.MetricSeries{{
		MetricName: "CPUUtilization",
		Unit:       "percent",
		Points: []telemetry.Point{
			{Timestamp: time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC), Value: 40},
		},
	}}, nil
}

type memRepo struct {
	mu   sync.Mutex
	recs map[string]*domain.Record
}

func (r *memRepo) Save(ctx context.Context, rec *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.ID] = rec
	return nil
}

func (r *memRepo) Get(ctx context.Context, id string) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, fmt.Errorf("analysis %s: %w", id, sql.ErrNoRows)
	}
	return rec, nil
}

func (r *memRepo) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	catalog, err := workflows.NewCatalog(workflows.Defaults())
	require.NoError(t, err)

	clock := application.SystemClock{}
	svc := &appanalysis.Service{
		Directory: directory.NewStatic([]resources.ResourceRef{
			{ID: "stream-A", Name: "orders-events", Type: resources.TypeKinesisStream, Region: "us-east-1"},
		}),
		Catalog:   catalog,
		Gatherer:  stubGatherer{},
		Selector:  appanalysis.NewSelector(rules.NewAnalyzer(), nil, false),
		Assembler: appanalysis.Assembler{Clock: clock},
		Repo:      &memRepo{recs: make(map[string]*domain.Record)},
		Clock:     clock,
	}
	bulk := appanalysis.NewBulkService(svc, nil, 2, 0)

	srv := httptest.NewServer(NewRouter(svc, bulk, nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/analyze",
		`{"resource_id": "stream-A", "workflow": "performance", "time_range": "last_24h"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec domain.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "stream-A", rec.ResourceID)
	assert.Equal(t, domain.AnalyzerMetrics, rec.Result.Metadata.AnalyzerUsed)
	assert.NotEmpty(t, rec.Result.RelatedQuestions)
}

func TestAnalyzeUnknownResourceIs404(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/v1/analyze",
		`{"resource_id": "ghost", "workflow": "performance"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalyzeUnsupportedWorkflowIs422(t *testing.T) {
	srv := newTestServer(t)
	// error-analysis needs the pattern analyzer, which is not configured
	resp := postJSON(t, srv.URL+"/v1/analyze",
		`{"resource_id": "stream-A", "workflow": "error-analysis"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAnalyzeValidationIs400(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/analyze", `{"workflow": "performance"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/v1/analyze",
		`{"resource_id": "stream-A", "workflow": "performance", "time_range": "yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/v1/analyze", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkflowsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/workflows/kinesis-stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Workflows []workflows.Workflow `json:"workflows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Workflows)

	// unknown types list as empty, not as an error
	resp, err = http.Get(srv.URL + "/v1/workflows/toaster")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAskEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/ask",
		`{"resource_id": "stream-A", "question": "Why is consumer lag growing?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec domain.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "qna", rec.WorkflowID)
	assert.Equal(t, "Why is consumer lag growing?", rec.Question)
}

func TestBulkLifecycleEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/analyze/bulk",
		`{"workflow": "performance", "resource_ids": ["stream-A", "stream-A"]}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var started struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	require.NotEmpty(t, started.RunID)

	require.Eventually(t, func() bool {
		r, err := http.Get(srv.URL + "/v1/analyze/bulk/" + started.RunID)
		if err != nil {
			return false
		}
		defer r.Body.Close()
		var snap domain.BulkSnapshot
		if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
			return false
		}
		return snap.Status == domain.RunCompleted
	}, 5*time.Second, 20*time.Millisecond)

	r, err := http.Get(srv.URL + "/v1/analyze/bulk/" + started.RunID + "/export")
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, "text/csv", r.Header.Get("Content-Type"))
}

func TestBulkUnknownRunIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/analyze/bulk/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/analyze/bulk/nope", nil)
	dresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer dresp.Body.Close()
	assert.Equal(t, http.StatusNotFound, dresp.StatusCode)
}
