package selection

import (
	"cmp"
	"fmt"
	"math/rand"
	"slices"

	"github.com/kailas-cloud/smartsample/internal/domain"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
)

// Select picks exactly target candidates using the configured strategy.
//
// Candidates are walked in ascending Order. The same candidates, target and
// options always produce the same result. Errors: *domain.InvalidTargetError
// when target is outside [0, len(cands)], domain.ErrInvalidOptions for bad
// options, domain.ErrDuplicateCandidate for repeated identifiers and
// *domain.DimensionMismatchError when fingerprint widths differ.
func Select(cands []Candidate, target int, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	if target < 0 || target > len(cands) {
		return Result{}, domain.NewInvalidTarget(target, len(cands))
	}
	if err := checkCandidates(cands); err != nil {
		return Result{}, err
	}

	walk := slices.Clone(cands)
	slices.SortStableFunc(walk, func(a, b Candidate) int { return cmp.Compare(a.Order, b.Order) })

	rng := rand.New(rand.NewSource(opts.Seed))
	var (
		picked  []int
		buckets []BucketStat
		err     error
	)
	switch opts.Strategy {
	case strategy.RollingWindow:
		picked, err = greedy(walk, target, opts.WindowSize, opts.DuplicateDistance, rng)
	case strategy.Exact:
		picked, err = greedy(walk, target, max(target, 1), opts.DuplicateDistance, rng)
	case strategy.FarthestPoint:
		picked, err = farthestPoint(walk, target, rng)
	case strategy.Bucket:
		picked, buckets, err = bucketSample(walk, target, opts.Keyer)
	}
	if err != nil {
		return Result{}, err
	}

	return buildResult(walk, picked, buckets, opts)
}

func checkCandidates(cands []Candidate) error {
	seen := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateCandidate, c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Fingerprint.Width() != cands[0].Fingerprint.Width() {
			return fmt.Errorf("candidate %q: %w", c.ID,
				domain.NewDimensionMismatch(c.Fingerprint.Width(), cands[0].Fingerprint.Width()))
		}
	}
	if len(cands) > 0 && cands[0].Fingerprint.IsZero() {
		return fmt.Errorf("candidate %q: empty fingerprint", cands[0].ID)
	}
	return nil
}

func buildResult(walk []Candidate, picked []int, buckets []BucketStat, opts Options) (Result, error) {
	in := make([]bool, len(walk))
	res := Result{
		Strategy: opts.Strategy,
		Selected: make([]string, 0, len(picked)),
		Excluded: make([]string, 0, len(walk)-len(picked)),
		Buckets:  buckets,
	}
	for _, i := range picked {
		in[i] = true
		res.Selected = append(res.Selected, walk[i].ID)
	}
	excluded := make([]int, 0, len(walk)-len(picked))
	for i, c := range walk {
		if !in[i] {
			excluded = append(excluded, i)
			res.Excluded = append(res.Excluded, c.ID)
		}
	}

	if opts.ResolveNearest {
		nearest, err := resolveNearest(walk, picked, excluded)
		if err != nil {
			return Result{}, err
		}
		res.NearestIncluded = nearest
	}
	return res, nil
}
