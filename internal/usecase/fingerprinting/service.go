package fingerprinting

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/smartsample/internal/domain"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	"github.com/kailas-cloud/smartsample/internal/domain/selection"
	"github.com/kailas-cloud/smartsample/internal/metrics"
)

// Service fingerprints sources in parallel.
type Service struct {
	reader    Reader
	extractor fingerprint.Extractor
	workers   int
	logger    *zap.Logger
}

// New creates a fingerprinting service. workers <= 0 means GOMAXPROCS.
func New(r Reader, e fingerprint.Extractor, workers int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Service{reader: r, extractor: e, workers: workers, logger: logger}
}

// Workers returns the pool size.
func (s *Service) Workers() int { return s.workers }

type outcome struct {
	fp  fingerprint.Fingerprint
	err error
}

// Fingerprint reads and fingerprints every source. Unreadable or undecodable
// sources are returned as skipped, in walk order, and never abort the run.
// Context cancellation does.
func (s *Service) Fingerprint(
	ctx context.Context, sources []domain.Source,
) ([]selection.Candidate, []*domain.DecodeError, error) {
	results := make([]outcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range sources {
		g.Go(func() error {
			fp, err := s.one(gctx, sources[i].ID)
			if err != nil && isCanceled(err) {
				return err
			}
			results[i] = outcome{fp: fp, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("fingerprint sources: %w", err)
	}

	cands := make([]selection.Candidate, 0, len(sources))
	var skipped []*domain.DecodeError
	for i, src := range sources {
		if err := results[i].err; err != nil {
			skipped = append(skipped, &domain.DecodeError{ID: src.ID, Err: err})
			metrics.FingerprintsTotal.WithLabelValues("skipped").Inc()
			s.logger.Warn("Skipping unreadable image", zap.String("id", src.ID), zap.Error(err))
			continue
		}
		metrics.FingerprintsTotal.WithLabelValues("ok").Inc()
		cands = append(cands, selection.Candidate{ID: src.ID, Order: src.Order, Fingerprint: results[i].fp})
	}
	return cands, skipped, nil
}

func (s *Service) one(ctx context.Context, id string) (fingerprint.Fingerprint, error) {
	if err := ctx.Err(); err != nil {
		return fingerprint.Fingerprint{}, err
	}
	data, err := s.reader.Read(ctx, id)
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}
	return s.extractor.Extract(ctx, data)
}

// Extract fingerprints raw image bytes without a reader.
func (s *Service) Extract(ctx context.Context, data []byte) (fingerprint.Fingerprint, error) {
	fp, err := s.extractor.Extract(ctx, data)
	if err != nil {
		if isCanceled(err) {
			return fingerprint.Fingerprint{}, err
		}
		return fingerprint.Fingerprint{}, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return fp, nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
