package telemetry

import (
	"time"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

// MetricQuery describes one telemetry pull for a single resource.
type MetricQuery struct {
	Resource    resources.ResourceRef `json:"resource"`
	MetricNames []string              `json:"metric_names"`
	Range       resources.TimeRange   `json:"range"`
	Step        time.Duration         `json:"step,omitempty"`
}

// Point is one sample in a series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MetricSeries holds the samples for one metric, ordered by ascending
// timestamp. Gaps are preserved, never interpolated. Never mutated after
// the gatherer returns it.
type MetricSeries struct {
	MetricName string  `json:"metric_name"`
	Unit       string  `json:"unit,omitempty"`
	Points     []Point `json:"points"`
}

// Last returns the most recent sample value, or 0 when the series is empty.
func (s MetricSeries) Last() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Value
}

// Max returns the largest sample value, or 0 when the series is empty.
func (s MetricSeries) Max() float64 {
	var max float64
	for i, p := range s.Points {
		if i == 0 || p.Value > max {
			max = p.Value
		}
	}
	return max
}

// Min returns the smallest sample value, or 0 when the series is empty.
func (s MetricSeries) Min() float64 {
	var min float64
	for i, p := range s.Points {
		if i == 0 || p.Value < min {
			min = p.Value
		}
	}
	return min
}

// Avg returns the arithmetic mean of the samples, or 0 when empty.
func (s MetricSeries) Avg() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range s.Points {
		sum += p.Value
	}
	return sum / float64(len(s.Points))
}
