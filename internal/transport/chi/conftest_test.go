package chi

import (
	"context"
	"errors"

	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	healthuc "github.com/kailas-cloud/smartsample/internal/usecase/health"
	selectionuc "github.com/kailas-cloud/smartsample/internal/usecase/selection"
)

// mockSelector records the last call. When selectErr is nil, Select runs the
// real engine so inline requests return genuine results.
type mockSelector struct {
	lastReq    selectionuc.Request
	lastOpts   domsel.Options
	lastTarget int
	lastCands  []domsel.Candidate

	report    selectionuc.Report
	filesErr  error
	selectErr error
}

func (m *mockSelector) SelectFiles(_ context.Context, req selectionuc.Request) (selectionuc.Report, error) {
	m.lastReq = req
	return m.report, m.filesErr
}

func (m *mockSelector) Select(
	_ context.Context, cands []domsel.Candidate, target int, opts domsel.Options,
) (domsel.Result, error) {
	m.lastCands = cands
	m.lastTarget = target
	m.lastOpts = opts
	if m.selectErr != nil {
		return domsel.Result{}, m.selectErr
	}
	return domsel.Select(cands, target, opts)
}

// mockExtractor returns a fixed fingerprint, or fails on payloads equal to "bad".
type mockExtractor struct {
	fp fingerprint.Fingerprint
}

func (m *mockExtractor) Extract(_ context.Context, data []byte) (fingerprint.Fingerprint, error) {
	if string(data) == "bad" {
		return fingerprint.Fingerprint{}, errors.New("unsupported format")
	}
	return m.fp, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }
