package selection

import (
	"context"

	"github.com/kailas-cloud/smartsample/internal/domain"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
)

// Corpus lists and orders input sources.
type Corpus interface {
	Scan(ctx context.Context, root string, filter domain.ScanFilter) ([]domain.Source, error)
	Order(ids []string) []domain.Source
}

// Fingerprinter turns sources into candidates, reporting unreadable ones.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, sources []domain.Source) ([]domsel.Candidate, []*domain.DecodeError, error)
}
