package selection

import (
	"fmt"
	"slices"
)

// bucketSample partitions candidates by key, apportions target across the
// buckets and samples each bucket at an even stride in walk order.
// The returned indices are in walk order.
func bucketSample(cands []Candidate, target int, keyer Keyer) ([]int, []BucketStat, error) {
	members := map[int][]int{}
	var keys []int
	for i, c := range cands {
		k, err := keyer.BucketKey(c.Fingerprint)
		if err != nil {
			return nil, nil, fmt.Errorf("bucket key for %q: %w", c.ID, err)
		}
		if _, ok := members[k]; !ok {
			keys = append(keys, k)
		}
		members[k] = append(members[k], i)
	}
	slices.Sort(keys)

	sizes := make([]int, len(keys))
	for j, k := range keys {
		sizes[j] = len(members[k])
	}
	quotas, err := Apportion(sizes, target)
	if err != nil {
		return nil, nil, err
	}

	label := func(int) string { return "" }
	if l, ok := keyer.(Labeler); ok {
		label = l.BucketLabel
	}

	keep := make([]bool, len(cands))
	stats := make([]BucketStat, 0, len(keys))
	for j, k := range keys {
		m := members[k]
		for _, pos := range strideIndices(len(m), quotas[j]) {
			keep[m[pos]] = true
		}
		st := BucketStat{
			Key:      k,
			Label:    label(k),
			Size:     len(m),
			Kept:     quotas[j],
			Excluded: len(m) - quotas[j],
		}
		if quotas[j] > 0 {
			st.Stride = float64(len(m)) / float64(quotas[j])
		}
		stats = append(stats, st)
	}

	picked := make([]int, 0, target)
	for i, k := range keep {
		if k {
			picked = append(picked, i)
		}
	}
	return picked, stats, nil
}
