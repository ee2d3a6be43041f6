package smartsample

import (
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
)

// Fingerprint is a fixed-width perceptual bit-vector.
type Fingerprint = fingerprint.Fingerprint

// Strategy names a selection algorithm.
type Strategy = strategy.Strategy

// Supported strategies.
const (
	StrategyRollingWindow = strategy.RollingWindow
	StrategyExact         = strategy.Exact
	StrategyBucket        = strategy.Bucket
	StrategyFarthestPoint = strategy.FarthestPoint
)

// BucketStat describes how one bucket was sampled.
type BucketStat = domsel.BucketStat

// Candidate is one item with a precomputed fingerprint. Order is the walk
// position; ties keep slice order.
type Candidate struct {
	ID          string
	Order       int
	Fingerprint Fingerprint
}

// Skipped is an input that could not be read or decoded.
type Skipped struct {
	ID  string
	Err error
}

// Result is the outcome of a selection. Selected and Excluded partition the
// eligible inputs; Skipped ones are in neither.
type Result struct {
	Strategy        Strategy
	Selected        []string
	Excluded        []string
	NearestIncluded map[string]string
	Buckets         []BucketStat
	Skipped         []Skipped
	// Inputs counts every input, skipped ones included.
	Inputs int
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b Fingerprint) (int, error) {
	return fingerprint.Distance(a, b)
}

// ParseFingerprint decodes Fingerprint.String output of the given width.
func ParseFingerprint(s string, width int) (Fingerprint, error) {
	return fingerprint.ParseHex(s, width)
}

func toCandidates(in []Candidate) []domsel.Candidate {
	out := make([]domsel.Candidate, len(in))
	for i, c := range in {
		out[i] = domsel.Candidate{ID: c.ID, Order: c.Order, Fingerprint: c.Fingerprint}
	}
	return out
}

func fromCandidates(in []domsel.Candidate) []Candidate {
	out := make([]Candidate, len(in))
	for i, c := range in {
		out[i] = Candidate{ID: c.ID, Order: c.Order, Fingerprint: c.Fingerprint}
	}
	return out
}
