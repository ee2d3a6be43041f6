package selection

import (
	"fmt"

	"github.com/kailas-cloud/smartsample/internal/domain"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
)

// Defaults.
const (
	DefaultWindowSize        = 100
	DefaultSeed        int64 = 42
	DefaultDuplicateDistance = 4
)

// Options tune a selection run.
type Options struct {
	Strategy strategy.Strategy
	// WindowSize bounds the reference set of RollingWindow. Zero means DefaultWindowSize.
	WindowSize int
	Seed       int64
	// DuplicateDistance is the near-duplicate floor: greedy strategies never
	// pick a candidate within this distance of its reference set unless the
	// remaining slots force it. Zero is kept as is and only rejects exact twins.
	DuplicateDistance int
	// Keyer drives the Bucket strategy. Nil means the default 132-bit layout.
	Keyer Keyer
	// ResolveNearest fills Result.NearestIncluded with an exact post-pass.
	ResolveNearest bool
}

// DefaultOptions returns the rolling-window configuration.
func DefaultOptions() Options {
	return Options{
		Strategy:          strategy.Default,
		WindowSize:        DefaultWindowSize,
		Seed:              DefaultSeed,
		DuplicateDistance: DefaultDuplicateDistance,
	}
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = strategy.Default
	}
	if o.WindowSize == 0 {
		o.WindowSize = DefaultWindowSize
	}
	if o.Keyer == nil {
		o.Keyer = LayoutKeyer{Layout: fingerprint.DefaultLayout()}
	}
	return o
}

// Validate checks option ranges after defaults are applied.
func (o Options) Validate() error {
	o = o.withDefaults()
	if !o.Strategy.IsValid() {
		return fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidOptions, o.Strategy)
	}
	if o.WindowSize < 1 {
		return fmt.Errorf("%w: window size must be >= 1, got %d", domain.ErrInvalidOptions, o.WindowSize)
	}
	if o.DuplicateDistance < 0 {
		return fmt.Errorf("%w: duplicate distance must be >= 0, got %d", domain.ErrInvalidOptions, o.DuplicateDistance)
	}
	return nil
}
