package rules

import "github.com/cloudscope/cloudscope/internal/domain/resources"

// Hourly rate table per region and resource type, USD. Refresh the numbers
// when pricing changes.
var hourlyRates = map[string]map[resources.ResourceType]float64{
	"us-east-1": {
		resources.TypeEC2Instance:   0.0832,
		resources.TypeCacheCluster:  0.068,
		resources.TypeKinesisStream: 0.015,
		resources.TypeRDSCluster:    0.171,
	},
	"us-west-2": {
		resources.TypeEC2Instance:   0.0832,
		resources.TypeCacheCluster:  0.068,
		resources.TypeKinesisStream: 0.015,
		resources.TypeRDSCluster:    0.171,
	},
	"eu-west-1": {
		resources.TypeEC2Instance:   0.0928,
		resources.TypeCacheCluster:  0.076,
		resources.TypeKinesisStream: 0.017,
		resources.TypeRDSCluster:    0.19,
	},
	"ap-southeast-1": {
		resources.TypeEC2Instance:   0.1,
		resources.TypeCacheCluster:  0.082,
		resources.TypeKinesisStream: 0.02,
		resources.TypeRDSCluster:    0.204,
	},
}

// defaultHourlyRate is used when the region or type is not in the table.
const defaultHourlyRate = 0.1

const hoursPerMonth = 730

// monthlyEstimate returns the flat monthly cost estimate for a resource.
// Unknown regions fall back to defaultHourlyRate instead of failing.
func monthlyEstimate(r resources.ResourceRef) float64 {
	rate := defaultHourlyRate
	if regional, ok := hourlyRates[r.Region]; ok {
		if v, ok := regional[r.Type]; ok {
			rate = v
		}
	}
	return rate * hoursPerMonth
}
