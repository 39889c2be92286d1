package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/cloudscope/cloudscope/internal/application/analysis"
	domain "github.com/cloudscope/cloudscope/internal/domain/analysis"
	"github.com/cloudscope/cloudscope/internal/domain/resources"
	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
	"github.com/cloudscope/cloudscope/internal/middleware"
)

type Router struct {
	svc  *appanalysis.Service
	bulk *appanalysis.BulkService
}

func NewRouter(svc *appanalysis.Service, bulk *appanalysis.BulkService, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc, bulk: bulk}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/ask", r.wrap(r.handleAsk))
		rt.Get("/workflows/{resource_type}", r.wrap(r.handleWorkflows))
		rt.Post("/analyze/bulk", r.wrap(r.handleBulkStart))
		rt.Get("/analyze/bulk/{run_id}", r.wrap(r.handleBulkGet))
		rt.Delete("/analyze/bulk/{run_id}", r.wrap(r.handleBulkCancel))
		rt.Get("/analyze/bulk/{run_id}/export", r.wrap(r.handleBulkExport))
		rt.Get("/analyses", r.wrap(r.handleAnalysesList))
		rt.Get("/analyses/{id}", r.wrap(r.handleAnalysisGet))
		rt.Get("/failures", r.wrap(r.handleFailures))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks validation failures so wrap can map them to 400.
type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var badReq badRequestError
		switch {
		case errors.As(err, &badReq):
			http.Error(w, badReq.Error(), http.StatusBadRequest)
		case errors.Is(err, resources.ErrNotFound),
			errors.Is(err, domain.ErrWorkflowNotFound),
			errors.Is(err, domain.ErrRunNotFound),
			errors.Is(err, sql.ErrNoRows):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrWorkflowUnsupported):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, telemetry.ErrThrottled):
			http.Error(w, "telemetry backend throttled, retry later", http.StatusTooManyRequests)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/analyze
// Body: {"resource_id": "...", "workflow": "...", "time_range": "last_24h"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ResourceID string `json:"resource_id"`
		Workflow   string `json:"workflow"`
		TimeRange  string `json:"time_range"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateResourceID(body.ResourceID); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateWorkflowID(body.Workflow); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateTimeRange(body.TimeRange); err != nil {
		return badRequestError{err}
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	rec, err := r.svc.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		ResourceID: body.ResourceID,
		WorkflowID: body.Workflow,
		Range:      resources.TimeRange(body.TimeRange),
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, rec)
}

// POST /v1/ask
// Body: {"resource_id": "...", "question": "...", "workflow": "...?"}
func (r *Router) handleAsk(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ResourceID string `json:"resource_id"`
		Question   string `json:"question"`
		Workflow   string `json:"workflow,omitempty"`
		TimeRange  string `json:"time_range,omitempty"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateResourceID(body.ResourceID); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateQuestion(body.Question); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateTimeRange(body.TimeRange); err != nil {
		return badRequestError{err}
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	rec, err := r.svc.Ask(req.Context(), appanalysis.AskCommand{
		ResourceID:      body.ResourceID,
		Question:        body.Question,
		PriorWorkflowID: body.Workflow,
		Range:           resources.TimeRange(body.TimeRange),
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, rec)
}

// GET /v1/workflows/{resource_type}
func (r *Router) handleWorkflows(w http.ResponseWriter, req *http.Request) error {
	t := resources.ResourceType(chi.URLParam(req, "resource_type"))
	list := r.svc.Workflows(t)
	return writeJSON(w, map[string]any{"workflows": list})
}

// POST /v1/analyze/bulk
// Body: {"workflow": "...", "resource_ids": ["...", ...], "time_range": "...?"}
func (r *Router) handleBulkStart(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Workflow    string   `json:"workflow"`
		ResourceIDs []string `json:"resource_ids"`
		TimeRange   string   `json:"time_range,omitempty"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateWorkflowID(body.Workflow); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateBulkSize(len(body.ResourceIDs)); err != nil {
		return badRequestError{err}
	}
	for _, id := range body.ResourceIDs {
		if err := middleware.ValidateResourceID(id); err != nil {
			return badRequestError{err}
		}
	}
	if err := middleware.ValidateTimeRange(body.TimeRange); err != nil {
		return badRequestError{err}
	}

	snap, err := r.bulk.Start(body.Workflow, body.ResourceIDs, resources.TimeRange(body.TimeRange))
	if err != nil {
		return err
	}
	middleware.IncrementBulkRuns()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(map[string]string{"run_id": snap.RunID})
}

// GET /v1/analyze/bulk/{run_id}
func (r *Router) handleBulkGet(w http.ResponseWriter, req *http.Request) error {
	snap, err := r.bulk.Get(chi.URLParam(req, "run_id"))
	if err != nil {
		return err
	}
	return writeJSON(w, snap)
}

// DELETE /v1/analyze/bulk/{run_id} → cancel; in-flight analyses complete
func (r *Router) handleBulkCancel(w http.ResponseWriter, req *http.Request) error {
	if err := r.bulk.Cancel(chi.URLParam(req, "run_id")); err != nil {
		return err
	}
	return writeJSON(w, map[string]string{"status": "canceling"})
}

// GET /v1/analyze/bulk/{run_id}/export
func (r *Router) handleBulkExport(w http.ResponseWriter, req *http.Request) error {
	data, err := r.bulk.ExportCSV(req.Context(), chi.URLParam(req, "run_id"))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bulk-export.csv"`)
	_, err = w.Write(data)
	return err
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleAnalysesList(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.List(req.Context(), page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/analyses/{id}
func (r *Router) handleAnalysisGet(w http.ResponseWriter, req *http.Request) error {
	rec, err := r.svc.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	return writeJSON(w, rec)
}

// GET /v1/failures?limit=
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.svc.RecentFailures(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}
