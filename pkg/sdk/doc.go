// Package smartsample embeds image diversity selection in a Go program.
//
// Images are reduced to perceptual fingerprints and a strategy keeps exactly
// K of N so the kept ones differ from each other as much as possible.
//
//	client, _ := smartsample.New(ctx)
//	defer client.Close()
//
//	res, _ := client.SelectDir(ctx, "./photos", 50,
//	    smartsample.WithRecursive(),
//	    smartsample.WithStrategy(smartsample.StrategyBucket),
//	)
//	for _, path := range res.Selected {
//	    fmt.Println(path)
//	}
//
// Precomputed fingerprints skip decoding entirely:
//
//	res, _ := client.Select(ctx, candidates, 10)
//
// Fingerprints can be cached in Redis or Valkey across processes with
// WithRedis.
package smartsample
