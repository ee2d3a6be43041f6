package selection

import "github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"

// Result is the outcome of one selection run.
// Selected and Excluded partition the input identifiers.
type Result struct {
	Strategy strategy.Strategy
	// Selected is in input order for greedy and bucket strategies, and in
	// pick order for FarthestPoint.
	Selected []string
	// Excluded is always in input order.
	Excluded []string
	// NearestIncluded maps an excluded identifier to the selected item it was
	// closest to. Only present when requested.
	NearestIncluded map[string]string
	// Buckets is only present for the Bucket strategy.
	Buckets []BucketStat
}

// BucketStat describes how one bucket was sampled.
type BucketStat struct {
	Key      int
	Label    string
	Size     int
	Kept     int
	Excluded int
	// Stride is Size/Kept, or 0 when nothing was kept.
	Stride float64
}

// Total returns the number of candidates the result covers.
func (r Result) Total() int { return len(r.Selected) + len(r.Excluded) }
