package selection

import (
	"math/rand"

	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
)

// greedy walks candidates in order and decides each one on the spot.
//
// A candidate's worth is the smaller of its distance to the reference set
// (the last windowSize picks) and its novelty score. The pacer compares it
// with the novelty of everything still ahead, so a far item later in the walk
// keeps its slot. A window at least as large as target makes the walk exact.
//
// Every run selects exactly target items: once the unseen candidates only
// just cover the open slots, each one is taken.
func greedy(cands []Candidate, target, windowSize, floor int, rng *rand.Rand) ([]int, error) {
	n := len(cands)
	picked := make([]int, 0, target)
	if target == 0 || n == 0 {
		return picked, nil
	}

	scores, err := novelty(cands)
	if err != nil {
		return nil, err
	}
	pace := newPacer(cands[0].Fingerprint.Width())
	for _, s := range scores[1:] {
		pace.add(s)
	}

	ref := newWindow(windowSize)
	for i, c := range cands {
		slots := target - len(picked)
		if slots == 0 {
			break
		}
		if i == 0 || n-i == slots {
			picked = append(picked, i)
			ref.push(i)
			continue
		}

		t, tie := pace.threshold(slots)
		pace.remove(scores[i])

		d, err := nearestDistance(c.Fingerprint, cands, ref)
		if err != nil {
			return nil, err
		}
		if !accept(min(d, scores[i]), d, floor, t, tie, rng) {
			continue
		}
		picked = append(picked, i)
		ref.push(i)
	}
	return picked, nil
}

// accept decides on a candidate with the given worth and distance to the
// reference set. Anything within floor of the reference set is a near duplicate.
func accept(worth, d, floor, threshold int, tie float64, rng *rand.Rand) bool {
	switch {
	case d <= floor:
		return false
	case worth > threshold:
		return true
	case worth == threshold:
		return rng.Float64() < tie
	default:
		return false
	}
}

func nearestDistance(fp fingerprint.Fingerprint, cands []Candidate, ref *window) (int, error) {
	best := fp.Width() + 1
	var err error
	ref.each(func(idx int) {
		if err != nil {
			return
		}
		d, derr := fingerprint.Distance(fp, cands[idx].Fingerprint)
		if derr != nil {
			err = derr
			return
		}
		if d < best {
			best = d
		}
	})
	return best, err
}
