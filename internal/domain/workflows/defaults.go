package workflows

import "github.com/cloudscope/cloudscope/internal/domain/resources"

// DefaultMetricSet is the generic metric set used when a follow-up question
// arrives with no prior workflow to inherit requirements from.
func DefaultMetricSet(t resources.ResourceType) []string {
	switch t {
	case resources.TypeKinesisStream:
		return []string{"IncomingRecords", "IteratorAgeMilliseconds", "Errors"}
	case resources.TypeRDSCluster:
		return []string{"CPUUtilization", "ReadLatency", "Errors"}
	case resources.TypeCacheCluster:
		return []string{"CPUUtilization", "MemoryUtilization", "NetworkIn"}
	default:
		return []string{"CPUUtilization", "NetworkIn"}
	}
}
