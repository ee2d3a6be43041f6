package fingerprinting

import "context"

// Reader loads the raw bytes behind a source ID.
type Reader interface {
	Read(ctx context.Context, id string) ([]byte, error)
}
