// Package app is the composition root shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/config"
	dbRedis "github.com/kailas-cloud/smartsample/internal/db/redis"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	"github.com/kailas-cloud/smartsample/internal/imaging"
	"github.com/kailas-cloud/smartsample/internal/metrics"
	"github.com/kailas-cloud/smartsample/internal/repository/corpus"
	"github.com/kailas-cloud/smartsample/internal/repository/fpcache"
	chiTransport "github.com/kailas-cloud/smartsample/internal/transport/chi"
	"github.com/kailas-cloud/smartsample/internal/usecase/fingerprinting"
	healthuc "github.com/kailas-cloud/smartsample/internal/usecase/health"
	selectionuc "github.com/kailas-cloud/smartsample/internal/usecase/selection"
)

// App holds the wired services.
type App struct {
	Config         config.Config
	Layout         fingerprint.Layout
	Corpus         *corpus.Repo
	Cache          *fpcache.CachedExtractor
	Fingerprinting *fingerprinting.Service
	Selection      *selectionuc.Service
	Health         *healthuc.Service

	store  *dbRedis.Store
	logger *zap.Logger
}

// New builds the extractor chain and services:
// imaging -> instrumented -> cached (memory, optional redis) -> worker pool -> selection.
// Metrics must already be registered.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, fmt.Errorf("fingerprint layout: %w", err)
	}

	base := imaging.NewExtractor(layout, imaging.Thresholds{
		Bright:        cfg.Fingerprint.BrightThreshold,
		Colorful:      cfg.Fingerprint.ColorfulThreshold,
		NeutralSpread: cfg.Fingerprint.NeutralSpread,
	})
	instrumented := fingerprinting.NewInstrumentedExtractor(base, logger)

	a := &App{Config: cfg, Layout: layout, logger: logger}

	cacheCfg := fpcache.Config{
		Size: cfg.Cache.Size,
		TTL:  time.Duration(cfg.Cache.TTLSec) * time.Second,
	}
	if cfg.Cache.Redis.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Redis.Addrs,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		timeout := time.Duration(cfg.Cache.Redis.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache store not ready: %w", err)
		}
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Cache.Redis.Addrs))
		a.store = store
		a.Cache, err = fpcache.New(instrumented, layout, store, cacheCfg, metrics.FingerprintCacheTotal, logger)
		if err != nil {
			store.Close()
			return nil, err
		}
		a.Health = healthuc.New(store, base)
	} else {
		a.Cache, err = fpcache.New(instrumented, layout, nil, cacheCfg, metrics.FingerprintCacheTotal, logger)
		if err != nil {
			return nil, err
		}
		a.Health = healthuc.New(nil, base)
	}

	a.Corpus = corpus.New()
	a.Fingerprinting = fingerprinting.New(a.Corpus, a.Cache, cfg.Selection.Workers, logger)
	a.Selection = selectionuc.New(a.Corpus, a.Fingerprinting, logger)
	return a, nil
}

// Router returns the HTTP handler for the API.
func (a *App) Router() http.Handler {
	server := chiTransport.NewServer(
		a.Selection,
		a.Fingerprinting,
		a.Health,
		a.Config.SelectionOptions(),
		a.Layout.Width(),
		a.logger,
	).
		WithLocalFiles(a.Config.Selection.AllowLocalFiles).
		WithMaxBodyBytes(a.Config.HTTP.MaxBodyBytes)
	return chiTransport.NewRouter(server, a.Config.Auth.APIKeys, a.logger)
}

// Close releases the cache store connection, if any.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
