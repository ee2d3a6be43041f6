package selection

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/kailas-cloud/smartsample/internal/domain"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
)

func TestSelect_ExactCountAndPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n <= 14; n++ {
		cands := randomCandidates(t, rng, n)
		ids := idsOf(cands)
		for k := 0; k <= n; k++ {
			for _, s := range allStrategies {
				for _, w := range []int{1, 3, 100} {
					opts := optionsFor(s)
					opts.WindowSize = w
					res, err := Select(cands, k, opts)
					if err != nil {
						t.Fatalf("n=%d k=%d %s w=%d: %v", n, k, s, w, err)
					}
					assertPartition(t, res, ids, k)
				}
			}
		}
	}
}

func TestSelect_LargeInputExactCount(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cands := randomCandidates(t, rng, 500)
	for _, k := range []int{1, 7, 50, 250, 499, 500} {
		for _, s := range allStrategies {
			res, err := Select(cands, k, optionsFor(s))
			if err != nil {
				t.Fatalf("k=%d %s: %v", k, s, err)
			}
			assertPartition(t, res, idsOf(cands), k)
		}
	}
}

func TestSelect_Boundaries(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cands := randomCandidates(t, rng, 9)

	for _, s := range allStrategies {
		res, err := Select(cands, 0, optionsFor(s))
		if err != nil {
			t.Fatalf("%s k=0: %v", s, err)
		}
		if len(res.Selected) != 0 || !reflect.DeepEqual(res.Excluded, idsOf(cands)) {
			t.Errorf("%s k=0: selected=%v excluded=%v", s, res.Selected, res.Excluded)
		}

		res, err = Select(cands, len(cands), optionsFor(s))
		if err != nil {
			t.Fatalf("%s k=n: %v", s, err)
		}
		if len(res.Excluded) != 0 {
			t.Errorf("%s k=n: excluded %v", s, res.Excluded)
		}
	}
}

func TestSelect_SingleCandidate(t *testing.T) {
	cands := []Candidate{{ID: "only", Fingerprint: compose(t, fingerprint.Features{})}}
	for _, s := range allStrategies {
		res, err := Select(cands, 1, optionsFor(s))
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if !reflect.DeepEqual(res.Selected, []string{"only"}) {
			t.Errorf("%s: selected = %v", s, res.Selected)
		}
	}
}

func TestSelect_EmptyInput(t *testing.T) {
	res, err := Select(nil, 0, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total() != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSelect_InvalidTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	cands := randomCandidates(t, rng, 5)

	for _, k := range []int{6, -1} {
		_, err := Select(cands, k, DefaultOptions())
		var ite *domain.InvalidTargetError
		if !errors.As(err, &ite) {
			t.Fatalf("k=%d: expected InvalidTargetError, got %v", k, err)
		}
		if ite.Target != k || ite.Available != 5 {
			t.Errorf("k=%d: error fields = %+v", k, ite)
		}
		if !errors.Is(err, domain.ErrInvalidTarget) {
			t.Errorf("k=%d: errors.Is(ErrInvalidTarget) = false", k)
		}
	}
}

func TestSelect_InvalidOptions(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	cands := randomCandidates(t, rng, 5)

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"negative window", func(o *Options) { o.WindowSize = -1 }},
		{"unknown strategy", func(o *Options) { o.Strategy = "random" }},
		{"negative floor", func(o *Options) { o.DuplicateDistance = -2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			_, err := Select(cands, 2, opts)
			if !errors.Is(err, domain.ErrInvalidOptions) {
				t.Fatalf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestSelect_ZeroOptions(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.WindowSize != DefaultWindowSize {
		t.Errorf("window = %d, want %d", opts.WindowSize, DefaultWindowSize)
	}
	// Zero is a valid floor, so an explicit zero from config survives.
	if opts.DuplicateDistance != 0 {
		t.Errorf("duplicate distance = %d, want 0", opts.DuplicateDistance)
	}

	rng := rand.New(rand.NewSource(6))
	cands := randomCandidates(t, rng, 20)
	res, err := Select(cands, 5, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != strategy.RollingWindow {
		t.Errorf("strategy = %q, want %q", res.Strategy, strategy.RollingWindow)
	}
	assertPartition(t, res, idsOf(cands), 5)
}

func TestSelect_DimensionMismatch(t *testing.T) {
	cands := []Candidate{
		{ID: "a", Fingerprint: word64(t, 0)},
		{ID: "b", Fingerprint: compose(t, fingerprint.Features{})},
	}
	_, err := Select(cands, 1, DefaultOptions())
	var dme *domain.DimensionMismatchError
	if !errors.As(err, &dme) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
}

func TestSelect_DuplicateIDs(t *testing.T) {
	cands := []Candidate{
		{ID: "a", Fingerprint: word64(t, 0)},
		{ID: "a", Fingerprint: word64(t, 1)},
	}
	_, err := Select(cands, 1, DefaultOptions())
	if !errors.Is(err, domain.ErrDuplicateCandidate) {
		t.Fatalf("expected ErrDuplicateCandidate, got %v", err)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cands := randomCandidates(t, rng, 200)
	for _, s := range allStrategies {
		opts := optionsFor(s)
		opts.ResolveNearest = true
		first, err := Select(cands, 37, opts)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		for i := 0; i < 3; i++ {
			again, err := Select(cands, 37, opts)
			if err != nil {
				t.Fatalf("%s: %v", s, err)
			}
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("%s: run %d differs from first run", s, i)
			}
		}
	}
}

// Four similar frames and one unrelated frame: every strategy must keep the
// outlier and exactly one frame of the cluster, wherever the outlier sits in
// the input.
func TestSelect_KeepsOutlierOverNearDuplicates(t *testing.T) {
	composed := func(w uint64) fingerprint.Fingerprint {
		return compose(t, fingerprint.Features{DHash: []uint64{w}})
	}
	tests := []struct {
		name    string
		cluster []fingerprint.Fingerprint
		outlier fingerprint.Fingerprint
		opts    func(strategy.Strategy) Options
	}{
		{
			name:    "within floor",
			cluster: []fingerprint.Fingerprint{composed(0x0), composed(0x1), composed(0x2), composed(0x3)},
			outlier: compose(t, fingerprint.Features{DHash: []uint64{^uint64(0)}, AHash: []uint64{^uint64(0)}}),
			opts:    optionsFor,
		},
		{
			name:    "above floor",
			cluster: []fingerprint.Fingerprint{word64(t, 0x0), word64(t, 0x3F), word64(t, 0xFC0), word64(t, 0x3F000)},
			outlier: word64(t, ^uint64(0)),
			opts:    optionsFor,
		},
		{
			name:    "zero options",
			cluster: []fingerprint.Fingerprint{composed(0x0), composed(0x1), composed(0x2), composed(0x3)},
			outlier: compose(t, fingerprint.Features{DHash: []uint64{^uint64(0)}, AHash: []uint64{^uint64(0)}}),
			opts:    func(s strategy.Strategy) Options { return Options{Strategy: s} },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for pos := 0; pos <= len(tc.cluster); pos++ {
				var cands []Candidate
				ci := 0
				for i := 0; i <= len(tc.cluster); i++ {
					if i == pos {
						cands = append(cands, Candidate{ID: "outlier", Order: i, Fingerprint: tc.outlier})
						continue
					}
					cands = append(cands, Candidate{
						ID:          fmt.Sprintf("frame-%d", ci),
						Order:       i,
						Fingerprint: tc.cluster[ci],
					})
					ci++
				}

				for _, s := range []strategy.Strategy{strategy.RollingWindow, strategy.Exact, strategy.FarthestPoint} {
					for _, w := range []int{1, 2, 100} {
						for _, seed := range []int64{1, 42, 1234} {
							opts := tc.opts(s)
							opts.WindowSize = w
							opts.Seed = seed
							res, err := Select(cands, 2, opts)
							if err != nil {
								t.Fatalf("pos=%d %s: %v", pos, s, err)
							}
							hasOutlier, frames := false, 0
							for _, id := range res.Selected {
								if id == "outlier" {
									hasOutlier = true
								} else {
									frames++
								}
							}
							if !hasOutlier || frames != 1 {
								t.Errorf("pos=%d %s w=%d seed=%d: selected %v", pos, s, w, seed, res.Selected)
							}
						}
					}
				}
			}
		})
	}
}

// A larger window tends to spread picks further, but a single pass cannot
// promise it for every window: picks diverge once the reference sets differ.
// What does hold for every window is the exact count, determinism, and that
// any window covering target is exact mode.
func TestSelect_WindowSweep(t *testing.T) {
	const (
		n      = 200
		target = 20
	)
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		cands := randomCandidates(t, rng, n)
		ids := idsOf(cands)

		exact, err := Select(cands, target, optionsFor(strategy.Exact))
		if err != nil {
			t.Fatalf("seed=%d exact: %v", seed, err)
		}
		assertPartition(t, exact, ids, target)

		narrow := -1
		for w := 1; w <= 2*target; w++ {
			opts := DefaultOptions()
			opts.WindowSize = w
			res, err := Select(cands, target, opts)
			if err != nil {
				t.Fatalf("seed=%d w=%d: %v", seed, w, err)
			}
			assertPartition(t, res, ids, target)

			again, err := Select(cands, target, opts)
			if err != nil {
				t.Fatalf("seed=%d w=%d: %v", seed, w, err)
			}
			if !reflect.DeepEqual(res, again) {
				t.Fatalf("seed=%d w=%d: not deterministic", seed, w)
			}

			if w >= target && !reflect.DeepEqual(res.Selected, exact.Selected) {
				t.Errorf("seed=%d w=%d: differs from exact", seed, w)
			}
			if w == 1 {
				narrow = minPairwise(t, cands, res.Selected)
			}
		}
		if wide := minPairwise(t, cands, exact.Selected); wide < narrow {
			t.Logf("seed=%d: exact spread %d below window-1 spread %d", seed, wide, narrow)
		}
	}
}

func TestSelect_WideWindowMatchesExact(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	cands := randomCandidates(t, rng, 300)
	for _, k := range []int{5, 30, 150} {
		rolling := DefaultOptions()
		rolling.WindowSize = k
		got, err := Select(cands, k, rolling)
		if err != nil {
			t.Fatal(err)
		}
		want, err := Select(cands, k, optionsFor(strategy.Exact))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got.Selected, want.Selected) {
			t.Errorf("k=%d: window=k differs from exact", k)
		}
	}
}

func TestSelect_RejectsNearDuplicatesWhenSlotsAllow(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 10; i++ {
		cands = append(cands, Candidate{
			ID:          fmt.Sprintf("dup-%d", i),
			Order:       i,
			Fingerprint: compose(t, fingerprint.Features{DHash: []uint64{uint64(i % 2)}}),
		})
	}
	cands = append(cands, Candidate{
		ID:          "distinct",
		Order:       10,
		Fingerprint: compose(t, fingerprint.Features{DHash: []uint64{^uint64(0)}, Bright: true}),
	})

	res, err := Select(cands, 2, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"dup-0", "distinct"}
	if !reflect.DeepEqual(res.Selected, want) {
		t.Errorf("selected = %v, want %v", res.Selected, want)
	}
}

func TestSelect_ExtremeOrderKeys(t *testing.T) {
	fp := func(w uint64) fingerprint.Fingerprint {
		return compose(t, fingerprint.Features{DHash: []uint64{w}})
	}
	tests := []struct {
		name  string
		cands []Candidate
	}{
		{"min int first", []Candidate{
			{ID: "second", Order: 1, Fingerprint: fp(0x1)},
			{ID: "third", Order: 2, Fingerprint: fp(0x2)},
			{ID: "first", Order: math.MinInt, Fingerprint: fp(0x3)},
		}},
		{"max int last", []Candidate{
			{ID: "third", Order: math.MaxInt, Fingerprint: fp(0x1)},
			{ID: "first", Order: math.MinInt, Fingerprint: fp(0x2)},
			{ID: "second", Order: 0, Fingerprint: fp(0x3)},
		}},
	}
	want := []string{"first", "second", "third"}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, s := range allStrategies {
				none, err := Select(tc.cands, 0, optionsFor(s))
				if err != nil {
					t.Fatalf("%s: %v", s, err)
				}
				if !reflect.DeepEqual(none.Excluded, want) {
					t.Errorf("%s: walk = %v, want %v", s, none.Excluded, want)
				}
			}
			all, err := Select(tc.cands, 3, DefaultOptions())
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(all.Selected, want) {
				t.Errorf("selected = %v, want %v", all.Selected, want)
			}
		})
	}
}

func TestSelect_WalksByOrderKey(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	cands := randomCandidates(t, rng, 12)
	reversed := make([]Candidate, len(cands))
	for i, c := range cands {
		reversed[len(cands)-1-i] = c
	}

	for _, s := range allStrategies {
		a, err := Select(cands, 4, optionsFor(s))
		if err != nil {
			t.Fatal(err)
		}
		b, err := Select(reversed, 4, optionsFor(s))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: result depends on slice order, not Order", s)
		}
		if !reflect.DeepEqual(b.Excluded, filterOut(idsOf(cands), b.Selected)) {
			t.Errorf("%s: excluded not in walk order: %v", s, b.Excluded)
		}
	}
}

func filterOut(ids, drop []string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var out []string
	for _, id := range ids {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}

func TestSelect_GreedySelectedInInputOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	cands := randomCandidates(t, rng, 60)
	pos := make(map[string]int, len(cands))
	for i, c := range cands {
		pos[c.ID] = i
	}
	for _, s := range []strategy.Strategy{strategy.RollingWindow, strategy.Exact, strategy.Bucket} {
		res, err := Select(cands, 17, optionsFor(s))
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(res.Selected); i++ {
			if pos[res.Selected[i-1]] >= pos[res.Selected[i]] {
				t.Fatalf("%s: selected out of input order: %v", s, res.Selected)
			}
		}
	}
}

func TestSelect_ResolveNearest(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cands := randomCandidates(t, rng, 40)
	for _, s := range allStrategies {
		opts := optionsFor(s)
		opts.ResolveNearest = true
		res, err := Select(cands, 6, opts)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.NearestIncluded) != len(res.Excluded) {
			t.Fatalf("%s: nearest has %d entries, want %d", s, len(res.NearestIncluded), len(res.Excluded))
		}
		selected := make(map[string]bool)
		for _, id := range res.Selected {
			selected[id] = true
		}
		for _, ex := range res.Excluded {
			if !selected[res.NearestIncluded[ex]] {
				t.Fatalf("%s: %s maps to non-selected %s", s, ex, res.NearestIncluded[ex])
			}
		}
	}

	res, err := Select(cands, 6, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.NearestIncluded != nil {
		t.Error("nearest map populated without ResolveNearest")
	}
}

func TestResolveNearest_TieGoesToFirstSelected(t *testing.T) {
	cands := []Candidate{
		{ID: "left", Fingerprint: word64(t, 0b0011)},
		{ID: "right", Fingerprint: word64(t, 0b1100)},
		{ID: "middle", Fingerprint: word64(t, 0b0110)},
	}
	got, err := resolveNearest(cands, []int{1, 0}, []int{2})
	if err != nil {
		t.Fatal(err)
	}
	if got["middle"] != "right" {
		t.Errorf("nearest = %q, want right", got["middle"])
	}
}

func TestSelect_BucketStats(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	cands := randomCandidates(t, rng, 400)

	res, err := Select(cands, 100, optionsFor(strategy.Bucket))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Buckets) == 0 {
		t.Fatal("expected bucket stats")
	}
	kept, size := 0, 0
	for i, b := range res.Buckets {
		if i > 0 && res.Buckets[i-1].Key >= b.Key {
			t.Errorf("buckets not sorted by key")
		}
		if b.Kept < 1 {
			t.Errorf("bucket %d (%s) got no slot", b.Key, b.Label)
		}
		if b.Kept+b.Excluded != b.Size {
			t.Errorf("bucket %d: kept+excluded != size", b.Key)
		}
		if b.Label == "" {
			t.Errorf("bucket %d has no label", b.Key)
		}
		kept += b.Kept
		size += b.Size
	}
	if kept != 100 || size != 400 {
		t.Errorf("kept=%d size=%d, want 100/400", kept, size)
	}
}

func TestSelect_BucketStrideWithinBucket(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 10; i++ {
		cands = append(cands, Candidate{
			ID:          fmt.Sprintf("c%d", i),
			Order:       i,
			Fingerprint: compose(t, fingerprint.Features{DHash: []uint64{uint64(i)}}),
		})
	}
	res, err := Select(cands, 3, optionsFor(strategy.Bucket))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c0", "c5", "c9"}
	if !reflect.DeepEqual(res.Selected, want) {
		t.Errorf("selected = %v, want %v", res.Selected, want)
	}
	if len(res.Buckets) != 1 || res.Buckets[0].Stride != 10.0/3.0 {
		t.Errorf("buckets = %+v", res.Buckets)
	}
}

func TestSelect_BucketFewerSlotsThanBuckets(t *testing.T) {
	var cands []Candidate
	sizes := []int{5, 1, 3}
	order := 0
	for dom, n := range sizes {
		for i := 0; i < n; i++ {
			cands = append(cands, Candidate{
				ID:          fmt.Sprintf("d%d-%d", dom, i),
				Order:       order,
				Fingerprint: compose(t, fingerprint.Features{Dominant: uint64(dom), DHash: []uint64{uint64(i)}}),
			})
			order++
		}
	}
	res, err := Select(cands, 2, optionsFor(strategy.Bucket))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"d0-0", "d2-0"}
	if !reflect.DeepEqual(res.Selected, want) {
		t.Errorf("selected = %v, want %v", res.Selected, want)
	}
}

func TestSelect_FarthestPointSecondPickIsFarthest(t *testing.T) {
	words := []uint64{0, 0xF, ^uint64(0), 0xFFFFFFFF, 0xF0F0}
	cands := make([]Candidate, len(words))
	byID := map[string]fingerprint.Fingerprint{}
	for i, w := range words {
		cands[i] = Candidate{ID: fmt.Sprintf("w%d", i), Order: i, Fingerprint: word64(t, w)}
		byID[cands[i].ID] = cands[i].Fingerprint
	}

	for _, seed := range []int64{0, 1, 7, 42, 99} {
		opts := optionsFor(strategy.FarthestPoint)
		opts.Seed = seed
		res, err := Select(cands, 2, opts)
		if err != nil {
			t.Fatal(err)
		}
		first := byID[res.Selected[0]]
		got, _ := fingerprint.Distance(first, byID[res.Selected[1]])
		for _, c := range cands {
			d, _ := fingerprint.Distance(first, c.Fingerprint)
			if d > got {
				t.Errorf("seed %d: %s at %d beats second pick %s at %d",
					seed, c.ID, d, res.Selected[1], got)
			}
		}
	}
}
