package selection

import "github.com/kailas-cloud/smartsample/internal/domain/fingerprint"

// noveltyLookback is how many preceding inputs a novelty score looks back.
// It is at least two so a single far frame cannot make its successor look novel.
const noveltyLookback = 8

// novelty scores every candidate after the first by its minimum distance to
// the noveltyLookback inputs before it in walk order. scores[0] is unused.
func novelty(cands []Candidate) ([]int, error) {
	scores := make([]int, len(cands))
	for i := 1; i < len(cands); i++ {
		best := cands[i].Fingerprint.Width() + 1
		for j := max(0, i-noveltyLookback); j < i; j++ {
			d, err := fingerprint.Distance(cands[i].Fingerprint, cands[j].Fingerprint)
			if err != nil {
				return nil, err
			}
			best = min(best, d)
		}
		scores[i] = best
	}
	return scores, nil
}

// pacer keeps a histogram of the novelty scores of candidates not walked yet.
// A candidate is worth a slot when it ranks among the top open slots of what
// remains.
type pacer struct {
	counts []int
	total  int
}

func newPacer(maxDistance int) *pacer {
	return &pacer{counts: make([]int, maxDistance+2)}
}

func (p *pacer) clamp(d int) int {
	return min(max(d, 0), len(p.counts)-1)
}

func (p *pacer) add(d int) {
	p.counts[p.clamp(d)]++
	p.total++
}

func (p *pacer) remove(d int) {
	d = p.clamp(d)
	if p.counts[d] == 0 {
		return
	}
	p.counts[d]--
	p.total--
}

// threshold returns the score t such that the remaining scores above t, plus
// a tie fraction of those equal to t, fill exactly slots.
// t is -1 when every remaining candidate fits.
func (p *pacer) threshold(slots int) (t int, tie float64) {
	above := 0
	for d := len(p.counts) - 1; d >= 0; d-- {
		c := p.counts[d]
		if c == 0 {
			continue
		}
		if above+c > slots {
			return d, float64(slots-above) / float64(c)
		}
		above += c
	}
	return -1, 1
}
