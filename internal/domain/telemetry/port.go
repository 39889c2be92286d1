package telemetry

import "context"

// Gatherer port (interface to the metrics backend)
type Gatherer interface {
	Fetch(ctx context.Context, q MetricQuery) ([]MetricSeries, error)
}
