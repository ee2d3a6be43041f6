package selection

import "github.com/kailas-cloud/smartsample/internal/domain/fingerprint"

// resolveNearest maps every excluded candidate to the closest selected one.
// Ties go to the earliest entry of selected.
func resolveNearest(cands []Candidate, selected, excluded []int) (map[string]string, error) {
	out := make(map[string]string, len(excluded))
	if len(selected) == 0 {
		return out, nil
	}
	for _, e := range excluded {
		best, bestDist := -1, 0
		for _, s := range selected {
			d, err := fingerprint.Distance(cands[e].Fingerprint, cands[s].Fingerprint)
			if err != nil {
				return nil, err
			}
			if best < 0 || d < bestDist {
				best, bestDist = s, d
			}
		}
		out[cands[e].ID] = cands[best].ID
	}
	return out, nil
}
