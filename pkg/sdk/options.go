package smartsample

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/smartsample/internal/domain"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	hashSize  int
	workers   int
	cacheSize int
	cacheTTL  time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis caches fingerprints in a Redis or Valkey instance shared by
// every client using it. Without it fingerprints are cached in memory only.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithHashSize sets the hash grid edge: 8 (132-bit fingerprints, default)
// or 16 (516-bit).
func WithHashSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hashSize = size
	})
}

// WithWorkers bounds parallel decoding. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithCache sizes the in-memory fingerprint cache and the TTL of shared
// entries. Zero values keep the defaults (10000 entries, no expiry).
func WithCache(size int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = size
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts, durations and
// cache hits) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// SelectOption tunes a single selection.
type SelectOption func(*selectConfig)

type selectConfig struct {
	opts   domsel.Options
	filter domain.ScanFilter
}

func newSelectConfig(layout fingerprint.Layout, opts []SelectOption) selectConfig {
	sc := selectConfig{opts: domsel.DefaultOptions()}
	sc.opts.Keyer = domsel.LayoutKeyer{Layout: layout}
	for _, o := range opts {
		o(&sc)
	}
	return sc
}

// WithStrategy picks the selection algorithm. Default: StrategyRollingWindow.
func WithStrategy(s Strategy) SelectOption {
	return func(c *selectConfig) { c.opts.Strategy = s }
}

// WithWindowSize sets how many recent picks the rolling window compares
// against. Default: 100.
func WithWindowSize(n int) SelectOption {
	return func(c *selectConfig) { c.opts.WindowSize = n }
}

// WithSeed fixes the random source. Default: 42.
func WithSeed(seed int64) SelectOption {
	return func(c *selectConfig) { c.opts.Seed = seed }
}

// WithDuplicateDistance sets the near-duplicate floor in bits. Default: 4.
func WithDuplicateDistance(bits int) SelectOption {
	return func(c *selectConfig) { c.opts.DuplicateDistance = bits }
}

// WithResolveNearest fills Result.NearestIncluded.
func WithResolveNearest() SelectOption {
	return func(c *selectConfig) { c.opts.ResolveNearest = true }
}

// WithRecursive scans subdirectories in SelectDir.
func WithRecursive() SelectOption {
	return func(c *selectConfig) { c.filter.Recursive = true }
}

// WithInclude keeps only files matching one of the doublestar patterns,
// relative to the scanned directory.
func WithInclude(patterns ...string) SelectOption {
	return func(c *selectConfig) { c.filter.Include = append(c.filter.Include, patterns...) }
}

// WithExclude drops files matching one of the doublestar patterns.
func WithExclude(patterns ...string) SelectOption {
	return func(c *selectConfig) { c.filter.Exclude = append(c.filter.Exclude, patterns...) }
}
