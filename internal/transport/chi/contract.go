package chi

import (
	"context"

	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	healthuc "github.com/kailas-cloud/smartsample/internal/usecase/health"
	selectionuc "github.com/kailas-cloud/smartsample/internal/usecase/selection"
)

// Selector runs selections (ISP).
type Selector interface {
	SelectFiles(ctx context.Context, req selectionuc.Request) (selectionuc.Report, error)
	Select(ctx context.Context, cands []domsel.Candidate, target int, opts domsel.Options) (domsel.Result, error)
}

// Fingerprinter extracts a fingerprint from raw image bytes.
type Fingerprinter interface {
	Extract(ctx context.Context, data []byte) (fingerprint.Fingerprint, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
