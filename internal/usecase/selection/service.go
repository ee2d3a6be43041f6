package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/domain"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	"github.com/kailas-cloud/smartsample/internal/logger"
	"github.com/kailas-cloud/smartsample/internal/metrics"
)

// Request selects from files on disk. Exactly one of Dir or Paths is set.
type Request struct {
	Dir     string
	Filter  domain.ScanFilter
	Paths   []string
	Target  int
	Options domsel.Options
}

// Report is the outcome of a file-based selection.
type Report struct {
	domsel.Result
	// Skipped lists sources that could not be read or decoded, in walk order.
	Skipped []*domain.DecodeError
	// Inputs is the number of sources before decoding.
	Inputs int
}

// Service runs selections end to end.
type Service struct {
	corpus Corpus
	fps    Fingerprinter
	logger *zap.Logger
}

// New creates a selection service.
func New(c Corpus, fps Fingerprinter, logger *zap.Logger) *Service {
	return &Service{corpus: c, fps: fps, logger: logger}
}

// SelectFiles lists, fingerprints and selects. target is checked against the
// input count up front and against the decodable count after fingerprinting.
func (s *Service) SelectFiles(ctx context.Context, req Request) (Report, error) {
	if err := req.Options.Validate(); err != nil {
		return Report{}, err
	}

	ctx, log := logger.WithFields(ctx, s.logger, zap.String("source", sourceKind(req)))

	sources, err := s.sources(ctx, req)
	if err != nil {
		return Report{}, err
	}
	if req.Target < 0 || req.Target > len(sources) {
		return Report{}, domain.NewInvalidTarget(req.Target, len(sources))
	}

	cands, skipped, err := s.fps.Fingerprint(ctx, sources)
	if err != nil {
		return Report{}, fmt.Errorf("fingerprint: %w", err)
	}
	if len(skipped) > 0 {
		log.Warn("Skipped undecodable inputs",
			zap.Int("skipped", len(skipped)),
			zap.Int("inputs", len(sources)),
		)
	}
	if req.Target > len(cands) {
		return Report{Skipped: skipped, Inputs: len(sources)}, domain.NewInvalidTarget(req.Target, len(cands))
	}

	res, err := s.Select(ctx, cands, req.Target, req.Options)
	if err != nil {
		return Report{Skipped: skipped, Inputs: len(sources)}, err
	}
	return Report{Result: res, Skipped: skipped, Inputs: len(sources)}, nil
}

func sourceKind(req Request) string {
	if req.Dir != "" {
		return "dir"
	}
	return "paths"
}

func (s *Service) sources(ctx context.Context, req Request) ([]domain.Source, error) {
	switch {
	case req.Dir != "" && len(req.Paths) > 0:
		return nil, fmt.Errorf("%w: dir and paths are mutually exclusive", domain.ErrInvalidOptions)
	case req.Dir != "":
		sources, err := s.corpus.Scan(ctx, req.Dir, req.Filter)
		if err != nil {
			return nil, fmt.Errorf("scan corpus: %w", err)
		}
		return sources, nil
	default:
		return s.corpus.Order(req.Paths), nil
	}
}

// Select runs the engine over already fingerprinted candidates.
func (s *Service) Select(
	ctx context.Context, cands []domsel.Candidate, target int, opts domsel.Options,
) (domsel.Result, error) {
	start := time.Now()
	res, err := domsel.Select(cands, target, opts)
	duration := time.Since(start)

	strategy := string(opts.Strategy)
	if res.Strategy != "" {
		strategy = string(res.Strategy)
	}
	log := logger.FromContextOr(ctx, s.logger)

	if err != nil {
		metrics.SelectionRunsTotal.WithLabelValues(strategy, "error").Inc()
		level := log.Error
		if isClientError(err) {
			level = log.Info
		}
		level("Selection rejected",
			zap.String("strategy", strategy),
			zap.Int("candidates", len(cands)),
			zap.Int("target", target),
			zap.Error(err),
		)
		return domsel.Result{}, err
	}

	metrics.SelectionRunsTotal.WithLabelValues(strategy, "ok").Inc()
	metrics.SelectionDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	metrics.SelectionCandidates.Observe(float64(len(cands)))

	log.Info("Selection completed",
		zap.String("strategy", strategy),
		zap.Int("candidates", len(cands)),
		zap.Int("target", target),
		zap.Int("selected", len(res.Selected)),
		zap.Int("buckets", len(res.Buckets)),
		zap.Duration("duration", duration),
	)
	return res, nil
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidTarget) ||
		errors.Is(err, domain.ErrInvalidOptions) ||
		errors.Is(err, domain.ErrDimensionMismatch) ||
		errors.Is(err, domain.ErrDuplicateCandidate)
}
