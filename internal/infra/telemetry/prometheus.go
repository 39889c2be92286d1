package telemetry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/cloudscope/cloudscope/internal/domain/telemetry"
)

const maxAttempts = 3

// metric units for known metric names; unknown metrics get no unit.
var metricUnits = map[string]string{
	"CPUUtilization":          "percent",
	"MemoryUtilization":       "percent",
	"IteratorAgeMilliseconds": "milliseconds",
	"ReadLatency":             "seconds",
	"NetworkIn":               "bytes",
	"IncomingRecords":         "count",
	"Errors":                  "count",
	"ThrottledRequests":       "count",
}

// Gatherer pulls time series from a Prometheus-compatible metrics backend.
type Gatherer struct {
	api     promv1.API
	timeout time.Duration

	// sleep is swappable so tests don't wait out the backoff
	sleep func(time.Duration)
	now   func() time.Time
}

// New connects to the metrics backend at endpoint.
func New(endpoint string, timeout time.Duration) (*Gatherer, error) {
	client, err := api.NewClient(api.Config{Address: endpoint})
	if err != nil {
		return nil, fmt.Errorf("telemetry client: %w", err)
	}
	return NewWithAPI(promv1.NewAPI(client), timeout), nil
}

// NewWithAPI wires an existing API handle; used by tests.
func NewWithAPI(a promv1.API, timeout time.Duration) *Gatherer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gatherer{api: a, timeout: timeout, sleep: time.Sleep, now: time.Now}
}

// Fetch resolves the relative range to absolute bounds at call time and
// queries each requested metric. Missing metrics are reported via
// PartialDataError alongside the series that were gathered; if every metric
// is missing the resource is treated as unavailable.
func (g *Gatherer) Fetch(ctx context.Context, q telemetry.MetricQuery) ([]telemetry.MetricSeries, error) {
	start, end := q.Range.Bounds(g.now())
	step := q.Step
	if step <= 0 {
		step = stepFor(q.Range.Duration())
	}

	var out []telemetry.MetricSeries
	var missing []string
	for _, name := range q.MetricNames {
		series, err := g.queryWithRetry(ctx, name, q.Resource.ID, promv1.Range{Start: start, End: end, Step: step})
		if err != nil {
			return nil, err
		}
		if series == nil {
			missing = append(missing, name)
			continue
		}
		out = append(out, *series)
	}

	if len(out) == 0 && len(missing) > 0 {
		// nothing came back at all; the resource is gone or unreachable
		return nil, fmt.Errorf("%w: no telemetry for %s", telemetry.ErrResourceUnavailable, q.Resource.ID)
	}
	if len(missing) > 0 {
		return nil, &telemetry.PartialDataError{Missing: missing, Series: out}
	}
	return out, nil
}

// queryWithRetry retries throttled queries with exponential backoff, up to
// maxAttempts. A nil series with nil error means the metric had no data.
func (g *Gatherer) queryWithRetry(ctx context.Context, metric, resourceID string, r promv1.Range) (*telemetry.MetricSeries, error) {
	query := fmt.Sprintf(`%s{resource_id=%q}`, metric, resourceID)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			g.sleep(backoff(attempt))
		}
		qctx, cancel := context.WithTimeout(ctx, g.timeout)
		value, _, err := g.api.QueryRange(qctx, query, r)
		cancel()
		if err == nil {
			return toSeries(metric, value), nil
		}
		if !isThrottled(err) {
			return nil, classify(err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", telemetry.ErrThrottled, lastErr)
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * 200 * time.Millisecond
}

func isThrottled(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "throttl") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429")
}

func classify(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "connection refused") {
		return fmt.Errorf("%w: %v", telemetry.ErrResourceUnavailable, err)
	}
	return fmt.Errorf("telemetry query: %w", err)
}

// toSeries flattens a range-query result to one series. Points must be in
// ascending timestamp order; gaps stay gaps.
func toSeries(metric string, value model.Value) *telemetry.MetricSeries {
	matrix, ok := value.(model.Matrix)
	if !ok || len(matrix) == 0 {
		return nil
	}
	stream := matrix[0]
	if len(stream.Values) == 0 {
		return nil
	}
	points := make([]telemetry.Point, 0, len(stream.Values))
	for _, v := range stream.Values {
		points = append(points, telemetry.Point{
			Timestamp: v.Timestamp.Time(),
			Value:     float64(v.Value),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return &telemetry.MetricSeries{
		MetricName: metric,
		Unit:       metricUnits[metric],
		Points:     points,
	}
}

// stepFor picks a query resolution proportional to the window.
func stepFor(window time.Duration) time.Duration {
	switch {
	case window <= time.Hour:
		return time.Minute
	case window <= 24*time.Hour:
		return 5 * time.Minute
	case window <= 7*24*time.Hour:
		return time.Hour
	default:
		return 6 * time.Hour
	}
}
