package selection

import (
	"fmt"
	"sort"
)

// Apportion splits target slots across buckets of the given sizes.
//
// When target is smaller than the number of non-empty buckets, the largest
// buckets get one slot each (ties go to the lower index). Otherwise every
// non-empty bucket gets one slot, and the rest is shared in proportion to each
// bucket's spare capacity (size-1) by largest remainder. Quotas never exceed
// bucket sizes and always sum to target.
func Apportion(sizes []int, target int) ([]int, error) {
	total := 0
	var nonEmpty []int
	for i, s := range sizes {
		if s < 0 {
			return nil, fmt.Errorf("bucket %d has negative size %d", i, s)
		}
		total += s
		if s > 0 {
			nonEmpty = append(nonEmpty, i)
		}
	}
	if target < 0 || target > total {
		return nil, fmt.Errorf("cannot apportion %d slots over %d items", target, total)
	}

	quotas := make([]int, len(sizes))
	if target == 0 {
		return quotas, nil
	}

	if target < len(nonEmpty) {
		sort.SliceStable(nonEmpty, func(a, b int) bool {
			return sizes[nonEmpty[a]] > sizes[nonEmpty[b]]
		})
		for _, i := range nonEmpty[:target] {
			quotas[i] = 1
		}
		return quotas, nil
	}

	spare := 0
	for _, i := range nonEmpty {
		quotas[i] = 1
		spare += sizes[i] - 1
	}
	extra := target - len(nonEmpty)
	if extra == 0 {
		return quotas, nil
	}

	type share struct {
		idx int
		rem int
	}
	shares := make([]share, 0, len(nonEmpty))
	given := 0
	for _, i := range nonEmpty {
		num := extra * (sizes[i] - 1)
		q := num / spare
		quotas[i] += q
		given += q
		shares = append(shares, share{idx: i, rem: num % spare})
	}
	sort.SliceStable(shares, func(a, b int) bool {
		if shares[a].rem != shares[b].rem {
			return shares[a].rem > shares[b].rem
		}
		return sizes[shares[a].idx] > sizes[shares[b].idx]
	})
	for j := 0; given < extra; j++ {
		quotas[shares[j].idx]++
		given++
	}
	return quotas, nil
}

// strideIndices picks quota positions spread evenly over [0, size).
// The first and last members are always included when quota >= 2.
func strideIndices(size, quota int) []int {
	if quota <= 0 || size <= 0 {
		return nil
	}
	if quota >= size {
		out := make([]int, size)
		for i := range out {
			out[i] = i
		}
		return out
	}
	if quota == 1 {
		return []int{0}
	}
	out := make([]int, quota)
	for j := range out {
		out[j] = (2*j*(size-1) + (quota - 1)) / (2 * (quota - 1))
	}
	return out
}
