package selection

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
)

var allStrategies = strategy.All()

func compose(t *testing.T, f fingerprint.Features) fingerprint.Fingerprint {
	t.Helper()
	fp, err := fingerprint.DefaultLayout().Compose(f)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return fp
}

func word64(t *testing.T, w uint64) fingerprint.Fingerprint {
	t.Helper()
	fp, err := fingerprint.FromWords([]uint64{w}, 64)
	if err != nil {
		t.Fatalf("FromWords: %v", err)
	}
	return fp
}

func randomCandidates(t *testing.T, rng *rand.Rand, n int) []Candidate {
	t.Helper()
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{
			ID:    fmt.Sprintf("img-%03d", i),
			Order: i,
			Fingerprint: compose(t, fingerprint.Features{
				DHash:    []uint64{rng.Uint64()},
				AHash:    []uint64{rng.Uint64()},
				Colorful: rng.Intn(2) == 1,
				Bright:   rng.Intn(2) == 1,
				Dominant: uint64(rng.Intn(4)),
			}),
		}
	}
	return out
}

func optionsFor(s strategy.Strategy) Options {
	o := DefaultOptions()
	o.Strategy = s
	return o
}

func idsOf(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ID
	}
	return out
}

// assertPartition checks that selected and excluded split all ids with no overlap.
func assertPartition(t *testing.T, res Result, ids []string, target int) {
	t.Helper()
	if len(res.Selected) != target {
		t.Fatalf("selected %d, want %d", len(res.Selected), target)
	}
	if res.Total() != len(ids) {
		t.Fatalf("selected+excluded = %d, want %d", res.Total(), len(ids))
	}
	seen := make(map[string]int, len(ids))
	for _, id := range res.Selected {
		seen[id]++
	}
	for _, id := range res.Excluded {
		seen[id]++
	}
	for _, id := range ids {
		if seen[id] != 1 {
			t.Fatalf("id %s appears %d times across selected/excluded", id, seen[id])
		}
	}
}

func minPairwise(t *testing.T, cands []Candidate, selected []string) int {
	t.Helper()
	byID := make(map[string]fingerprint.Fingerprint, len(cands))
	for _, c := range cands {
		byID[c.ID] = c.Fingerprint
	}
	best := -1
	for i := range selected {
		for j := i + 1; j < len(selected); j++ {
			d, err := fingerprint.Distance(byID[selected[i]], byID[selected[j]])
			if err != nil {
				t.Fatalf("Distance: %v", err)
			}
			if best < 0 || d < best {
				best = d
			}
		}
	}
	return best
}
