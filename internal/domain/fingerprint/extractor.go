package fingerprint

import "context"

// Extractor turns encoded image bytes into a fingerprint.
// Implementations must be deterministic: equal bytes give equal fingerprints.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (Fingerprint, error)
}
