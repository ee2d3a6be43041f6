package smartsample

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/smartsample/internal/db/redis"
	"github.com/kailas-cloud/smartsample/internal/domain"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	"github.com/kailas-cloud/smartsample/internal/imaging"
	"github.com/kailas-cloud/smartsample/internal/repository/corpus"
	"github.com/kailas-cloud/smartsample/internal/repository/fpcache"
	"github.com/kailas-cloud/smartsample/internal/usecase/fingerprinting"
	healthuc "github.com/kailas-cloud/smartsample/internal/usecase/health"
	selectionuc "github.com/kailas-cloud/smartsample/internal/usecase/selection"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped in tests.
type selectionUseCase interface {
	SelectFiles(ctx context.Context, req selectionuc.Request) (selectionuc.Report, error)
	Select(ctx context.Context, cands []domsel.Candidate, target int, opts domsel.Options) (domsel.Result, error)
}

type fingerprintUseCase interface {
	Fingerprint(ctx context.Context, sources []domain.Source) ([]domsel.Candidate, []*domain.DecodeError, error)
	Extract(ctx context.Context, data []byte) (fingerprint.Fingerprint, error)
}

type cacheUseCase interface {
	Purge(ctx context.Context) (int64, error)
}

// Client is the smartsample SDK entry point.
type Client struct {
	store     *dbRedis.Store
	layout    fingerprint.Layout
	order     func(ids []string) []domain.Source
	selSvc    selectionUseCase
	fpSvc     fingerprintUseCase
	cache     cacheUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. With WithRedis it also connects to the shared
// cache; ctx bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{hashSize: fingerprint.DefaultHashSize}
	for _, o := range opts {
		o.apply(cfg)
	}

	layout, err := fingerprint.NewLayout(cfg.hashSize)
	if err != nil {
		return nil, fmt.Errorf("smartsample: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store *dbRedis.Store
	if len(cfg.addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("smartsample: create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("smartsample: cache not ready: %w", err)
		}
	}

	c, err := wireClient(store, layout, cfg, obs)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return c, nil
}

func wireClient(store *dbRedis.Store, layout fingerprint.Layout, cfg *clientConfig, obs *observer) (*Client, error) {
	nop := zap.NewNop()

	base := imaging.NewExtractor(layout, imaging.DefaultThresholds())
	instrumented := fingerprinting.NewInstrumentedExtractor(base, nop)

	cacheCfg := fpcache.Config{Size: cfg.cacheSize, TTL: cfg.cacheTTL}
	var (
		cache     *fpcache.CachedExtractor
		healthSvc *healthuc.Service
		err       error
	)
	// Pass nil interfaces, not typed nil pointers, when there is no store.
	if store != nil {
		cache, err = fpcache.New(instrumented, layout, store, cacheCfg, obs.cacheCounter(), nop)
		healthSvc = healthuc.New(store, base)
	} else {
		cache, err = fpcache.New(instrumented, layout, nil, cacheCfg, obs.cacheCounter(), nop)
		healthSvc = healthuc.New(nil, base)
	}
	if err != nil {
		return nil, fmt.Errorf("smartsample: %w", err)
	}

	repo := corpus.New()
	fpSvc := fingerprinting.New(repo, cache, cfg.workers, nop)

	return &Client{
		store:     store,
		layout:    layout,
		order:     repo.Order,
		selSvc:    selectionuc.New(repo, fpSvc, nop),
		fpSvc:     fpSvc,
		cache:     cache,
		healthSvc: healthSvc,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Width returns the fingerprint width in bits produced by this client.
func (c *Client) Width() int { return c.layout.Width() }

// Ping checks shared cache connectivity. Without WithRedis it always succeeds.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Fingerprint computes the fingerprint of one encoded image.
func (c *Client) Fingerprint(ctx context.Context, data []byte) (fp Fingerprint, err error) {
	start := time.Now()
	defer func() { c.obs.observe("fingerprint", start, err) }()

	return c.fpSvc.Extract(ctx, data)
}

// FingerprintFiles fingerprints image files in parallel. Unreadable files
// are returned in skipped, in walk order; err is only set when the run
// itself fails.
func (c *Client) FingerprintFiles(
	ctx context.Context, paths []string,
) (cands []Candidate, skipped []Skipped, err error) {
	start := time.Now()
	defer func() { c.obs.observe("fingerprint_files", start, err, "files", len(paths)) }()

	got, bad, err := c.fpSvc.Fingerprint(ctx, c.order(paths))
	if err != nil {
		return nil, nil, err
	}
	return fromCandidates(got), fromDecodeErrors(bad), nil
}

// PurgeCache drops cached fingerprints for this client's hash size and
// returns how many shared entries were deleted.
func (c *Client) PurgeCache(ctx context.Context) (n int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("purge_cache", start, err) }()

	if c.cache == nil {
		return 0, errors.New("smartsample: no cache configured")
	}
	return c.cache.Purge(ctx)
}

func fromDecodeErrors(in []*domain.DecodeError) []Skipped {
	if len(in) == 0 {
		return nil
	}
	out := make([]Skipped, len(in))
	for i, d := range in {
		out[i] = Skipped{ID: d.ID, Err: d.Err}
	}
	return out
}
