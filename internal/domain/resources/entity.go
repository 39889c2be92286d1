package resources

import "time"

// ResourceType enum
type ResourceType string

const (
	TypeEC2Instance   ResourceType = "ec2-instance"
	TypeCacheCluster  ResourceType = "cache-cluster"
	TypeKinesisStream ResourceType = "kinesis-stream"
	TypeRDSCluster    ResourceType = "rds-cluster"
)

// ResourceRef identifies an externally-inventoried cloud resource.
// It is immutable for the lifetime of an analysis request.
type ResourceRef struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name,omitempty" yaml:"name"`
	Type    ResourceType `json:"type" yaml:"type"`
	Region  string       `json:"region" yaml:"region"`
	Account string       `json:"account,omitempty" yaml:"account"`
	ARN     string       `json:"arn,omitempty" yaml:"arn"`
}

// Label returns the display name, falling back to the id.
func (r ResourceRef) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// TimeRange enum of relative lookback windows
type TimeRange string

const (
	RangeLastHour   TimeRange = "last_1h"
	RangeLast3Hours TimeRange = "last_3h"
	RangeLastDay    TimeRange = "last_24h"
	RangeLast7Days  TimeRange = "last_7_days"
	RangeLast30Days TimeRange = "last_30_days"
)

// DefaultRange is used when a request does not name a window.
const DefaultRange = RangeLastDay

// Duration returns the lookback length of the range.
func (t TimeRange) Duration() time.Duration {
	switch t {
	case RangeLastHour:
		return time.Hour
	case RangeLast3Hours:
		return 3 * time.Hour
	case RangeLast7Days:
		return 7 * 24 * time.Hour
	case RangeLast30Days:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Bounds converts the relative range to absolute instants anchored at now.
// Resolution happens at call time, so identical relative queries issued
// minutes apart cover different windows.
func (t TimeRange) Bounds(now time.Time) (start, end time.Time) {
	return now.Add(-t.Duration()), now
}

// Valid reports whether the range is one of the known enum values.
func (t TimeRange) Valid() bool {
	switch t {
	case RangeLastHour, RangeLast3Hours, RangeLastDay, RangeLast7Days, RangeLast30Days:
		return true
	}
	return false
}
