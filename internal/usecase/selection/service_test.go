package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/smartsample/internal/domain"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
	"github.com/kailas-cloud/smartsample/internal/logger"
	"github.com/kailas-cloud/smartsample/internal/metrics"
)

func TestSelectFiles_Paths(t *testing.T) {
	fps := &mockFingerprinter{bad: map[string]bool{"img_03.jpg": true}}
	svc := New(&mockCorpus{}, fps, zap.NewNop())

	rep, err := svc.SelectFiles(context.Background(), Request{
		Paths:   paths(10),
		Target:  4,
		Options: domsel.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Selected) != 4 || len(rep.Excluded) != 5 {
		t.Errorf("selected=%d excluded=%d, want 4/5", len(rep.Selected), len(rep.Excluded))
	}
	if rep.Inputs != 10 {
		t.Errorf("inputs = %d, want 10", rep.Inputs)
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0].ID != "img_03.jpg" {
		t.Errorf("skipped = %v", rep.Skipped)
	}
}

func TestSelectFiles_Dir(t *testing.T) {
	c := &mockCorpus{scanned: (&mockCorpus{}).Order(paths(6))}
	svc := New(c, &mockFingerprinter{}, zap.NewNop())

	opts := domsel.DefaultOptions()
	opts.Strategy = strategy.Bucket
	rep, err := svc.SelectFiles(context.Background(), Request{Dir: "/data", Target: 3, Options: opts})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.scans != 1 {
		t.Errorf("scans = %d, want 1", c.scans)
	}
	if len(rep.Selected) != 3 || len(rep.Buckets) == 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestSelectFiles_TargetAboveInputs(t *testing.T) {
	fps := &mockFingerprinter{}
	svc := New(&mockCorpus{}, fps, zap.NewNop())

	_, err := svc.SelectFiles(context.Background(), Request{Paths: paths(5), Target: 6})
	var ite *domain.InvalidTargetError
	if !errors.As(err, &ite) || ite.Available != 5 {
		t.Fatalf("expected InvalidTargetError(available=5), got %v", err)
	}
	if fps.calls != 0 {
		t.Error("fingerprinting must not start for an impossible target")
	}
}

func TestSelectFiles_TargetAboveEligible(t *testing.T) {
	fps := &mockFingerprinter{bad: map[string]bool{"img_00.jpg": true, "img_01.jpg": true}}
	svc := New(&mockCorpus{}, fps, zap.NewNop())

	rep, err := svc.SelectFiles(context.Background(), Request{Paths: paths(5), Target: 4})
	var ite *domain.InvalidTargetError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTargetError, got %v", err)
	}
	if ite.Target != 4 || ite.Available != 3 {
		t.Errorf("error = %+v, want target 4 available 3", ite)
	}
	if len(rep.Skipped) != 2 {
		t.Errorf("skipped list should survive the error, got %v", rep.Skipped)
	}
}

func TestSelectFiles_DirAndPaths(t *testing.T) {
	svc := New(&mockCorpus{}, &mockFingerprinter{}, zap.NewNop())
	_, err := svc.SelectFiles(context.Background(), Request{Dir: "/data", Paths: paths(2), Target: 1})
	if !errors.Is(err, domain.ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestSelectFiles_InvalidOptionsBeforeScan(t *testing.T) {
	c := &mockCorpus{}
	svc := New(c, &mockFingerprinter{}, zap.NewNop())
	_, err := svc.SelectFiles(context.Background(), Request{
		Dir:     "/data",
		Target:  1,
		Options: domsel.Options{WindowSize: -5},
	})
	if !errors.Is(err, domain.ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
	if c.scans != 0 {
		t.Error("corpus scanned despite invalid options")
	}
}

func TestSelectFiles_ScanError(t *testing.T) {
	svc := New(&mockCorpus{scanErr: domain.ErrNotFound}, &mockFingerprinter{}, zap.NewNop())
	_, err := svc.SelectFiles(context.Background(), Request{Dir: "/missing", Target: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSelectFiles_FingerprintError(t *testing.T) {
	svc := New(&mockCorpus{}, &mockFingerprinter{err: context.Canceled}, zap.NewNop())
	_, err := svc.SelectFiles(context.Background(), Request{Paths: paths(3), Target: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSelect_LogsAndCounts(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))
	svc := New(&mockCorpus{}, &mockFingerprinter{}, zap.NewNop())

	cands, _, _ := (&mockFingerprinter{}).Fingerprint(ctx, (&mockCorpus{}).Order(paths(8)))
	before := testutil.ToFloat64(metrics.SelectionRunsTotal.WithLabelValues("exact", "ok"))

	opts := domsel.DefaultOptions()
	opts.Strategy = strategy.Exact
	res, err := svc.Select(ctx, cands, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Selected) != 3 {
		t.Errorf("selected %d, want 3", len(res.Selected))
	}

	after := testutil.ToFloat64(metrics.SelectionRunsTotal.WithLabelValues("exact", "ok"))
	if after-before != 1 {
		t.Errorf("selection_runs_total delta = %f, want 1", after-before)
	}
	entries := logs.FilterMessage("Selection completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one completion log, got %d", len(entries))
	}
	if entries[0].ContextMap()["selected"] != int64(3) {
		t.Errorf("log fields = %v", entries[0].ContextMap())
	}
}

func TestSelect_ClientErrorLoggedAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := New(&mockCorpus{}, &mockFingerprinter{}, zap.New(core))

	_, err := svc.Select(context.Background(), nil, 1, domsel.DefaultOptions())
	if !errors.Is(err, domain.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	entries := logs.FilterMessage("Selection rejected").All()
	if len(entries) != 1 || entries[0].Level != zapcore.InfoLevel {
		t.Errorf("expected one info-level rejection log, got %v", entries)
	}
}

func TestSelectFiles_SkippedLoggedWithSource(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fps := &mockFingerprinter{bad: map[string]bool{"img_01.jpg": true}}
	svc := New(&mockCorpus{}, fps, zap.New(core))

	if _, err := svc.SelectFiles(context.Background(), Request{Paths: paths(4), Target: 2}); err != nil {
		t.Fatal(err)
	}

	warn := logs.FilterMessage("Skipped undecodable inputs").All()
	if len(warn) != 1 || warn[0].ContextMap()["skipped"] != int64(1) {
		t.Fatalf("skip warning = %v", warn)
	}
	for _, e := range logs.All() {
		if e.ContextMap()["source"] != "paths" {
			t.Errorf("%q missing source field", e.Message)
		}
	}
}
