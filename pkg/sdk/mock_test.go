package smartsample

import (
	"context"

	"github.com/kailas-cloud/smartsample/internal/domain"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	healthuc "github.com/kailas-cloud/smartsample/internal/usecase/health"
	selectionuc "github.com/kailas-cloud/smartsample/internal/usecase/selection"
)

// --- selectionUseCase mock ---

type mockSelectionUC struct {
	selectFilesFn func(ctx context.Context, req selectionuc.Request) (selectionuc.Report, error)
	selectFn      func(ctx context.Context, cands []domsel.Candidate, target int, opts domsel.Options) (domsel.Result, error)
}

func (m *mockSelectionUC) SelectFiles(ctx context.Context, req selectionuc.Request) (selectionuc.Report, error) {
	return m.selectFilesFn(ctx, req)
}

func (m *mockSelectionUC) Select(
	ctx context.Context, cands []domsel.Candidate, target int, opts domsel.Options,
) (domsel.Result, error) {
	return m.selectFn(ctx, cands, target, opts)
}

// --- fingerprintUseCase mock ---

type mockFingerprintUC struct {
	fingerprintFn func(ctx context.Context, sources []domain.Source) ([]domsel.Candidate, []*domain.DecodeError, error)
	extractFn     func(ctx context.Context, data []byte) (fingerprint.Fingerprint, error)
}

func (m *mockFingerprintUC) Fingerprint(
	ctx context.Context, sources []domain.Source,
) ([]domsel.Candidate, []*domain.DecodeError, error) {
	return m.fingerprintFn(ctx, sources)
}

func (m *mockFingerprintUC) Extract(ctx context.Context, data []byte) (fingerprint.Fingerprint, error) {
	return m.extractFn(ctx, data)
}

// --- cacheUseCase mock ---

type mockCacheUC struct {
	purged int64
	err    error
}

func (m *mockCacheUC) Purge(_ context.Context) (int64, error) { return m.purged, m.err }

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

func newMockClient() *Client {
	return &Client{
		layout: fingerprint.DefaultLayout(),
		order: func(ids []string) []domain.Source {
			out := make([]domain.Source, len(ids))
			for i, id := range ids {
				out[i] = domain.Source{ID: id, Order: i}
			}
			return out
		},
		obs: &observer{},
	}
}
