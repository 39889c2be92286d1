package telemetry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrResourceUnavailable indicates the resource is deleted or unreachable in
// the metrics backend. Fatal, never retried.
var ErrResourceUnavailable = errors.New("telemetry: resource unavailable")

// ErrThrottled indicates the metrics backend rejected the query due to rate
// limits. Retried with backoff inside the gatherer.
var ErrThrottled = errors.New("telemetry: throttled")

// PartialDataError reports that some requested metrics were missing. It still
// carries the series that were gathered; callers proceed with those and
// surface the missing names as a caveat, not a failure.
type PartialDataError struct {
	Missing []string
	Series  []MetricSeries
}

func (e *PartialDataError) Error() string {
	return fmt.Sprintf("telemetry: partial data, missing metrics: %s", strings.Join(e.Missing, ", "))
}
