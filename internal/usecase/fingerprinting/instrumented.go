package fingerprinting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	"github.com/kailas-cloud/smartsample/internal/metrics"
)

// InstrumentedExtractor wraps an Extractor with timing and debug logging.
// Wrapped inside the cache, it only observes real extractions.
type InstrumentedExtractor struct {
	inner  fingerprint.Extractor
	logger *zap.Logger
}

// NewInstrumentedExtractor wraps an extractor with observability.
func NewInstrumentedExtractor(inner fingerprint.Extractor, logger *zap.Logger) *InstrumentedExtractor {
	return &InstrumentedExtractor{inner: inner, logger: logger}
}

// Extract delegates to the inner extractor and records its duration.
func (p *InstrumentedExtractor) Extract(ctx context.Context, data []byte) (fingerprint.Fingerprint, error) {
	start := time.Now()

	fp, err := p.inner.Extract(ctx, data)

	duration := time.Since(start)
	metrics.FingerprintDuration.Observe(duration.Seconds())

	if err != nil {
		p.logger.Debug("Fingerprint extraction failed",
			zap.Int("bytes", len(data)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fingerprint.Fingerprint{}, err
	}

	p.logger.Debug("Fingerprint extracted",
		zap.Int("bytes", len(data)),
		zap.Duration("duration", duration),
		zap.Int("bits", fp.Width()),
	)
	return fp, nil
}
