package selection

import (
	"math/rand"

	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
)

// farthestPoint runs greedy max-min selection: a seeded random first pick,
// then repeatedly the candidate farthest from everything picked so far.
// Ties on distance are broken uniformly at random.
func farthestPoint(cands []Candidate, target int, rng *rand.Rand) ([]int, error) {
	n := len(cands)
	picked := make([]int, 0, target)
	if target == 0 || n == 0 {
		return picked, nil
	}

	taken := make([]bool, n)
	minDist := make([]int, n)
	for i := range minDist {
		minDist[i] = cands[0].Fingerprint.Width() + 1
	}

	next := rng.Intn(n)
	for {
		picked = append(picked, next)
		taken[next] = true
		if len(picked) == target {
			return picked, nil
		}

		best, ties := -1, 0
		for i := range cands {
			if taken[i] {
				continue
			}
			d, err := fingerprint.Distance(cands[i].Fingerprint, cands[next].Fingerprint)
			if err != nil {
				return nil, err
			}
			if d < minDist[i] {
				minDist[i] = d
			}
			switch {
			case best < 0 || minDist[i] > minDist[best]:
				best, ties = i, 1
			case minDist[i] == minDist[best]:
				ties++
				if rng.Intn(ties) == 0 {
					best = i
				}
			}
		}
		next = best
	}
}
