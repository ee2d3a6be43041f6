package strategy

import "fmt"

// Strategy names a selection algorithm.
type Strategy string

// Selection strategies.
const (
	// RollingWindow compares each candidate against a bounded FIFO of recent picks.
	RollingWindow Strategy = "rolling_window"
	// Exact compares each candidate against every pick so far.
	Exact Strategy = "exact"
	// Bucket stratifies by discretized features, then samples each bucket at a stride.
	Bucket Strategy = "bucket"
	// FarthestPoint repeatedly picks the candidate farthest from every pick so far.
	FarthestPoint Strategy = "farthest_point"
)

// Default is used when no strategy is given.
const Default = RollingWindow

// ExactAdvisoryLimit is the candidate count above which callers should prefer
// RollingWindow over Exact. It is not enforced.
const ExactAdvisoryLimit = 5000

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == RollingWindow || s == Exact || s == Bucket || s == FarthestPoint
}

// Parse converts a name into a Strategy; empty input yields Default.
func Parse(name string) (Strategy, error) {
	if name == "" {
		return Default, nil
	}
	s := Strategy(name)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown strategy %q", name)
	}
	return s, nil
}

// All lists the supported strategies in display order.
func All() []Strategy {
	return []Strategy{RollingWindow, Exact, Bucket, FarthestPoint}
}
