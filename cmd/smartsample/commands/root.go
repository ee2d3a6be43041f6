package commands

import (
	"context"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/app"
	"github.com/kailas-cloud/smartsample/internal/config"
	logpkg "github.com/kailas-cloud/smartsample/internal/logger"
	"github.com/kailas-cloud/smartsample/internal/metrics"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	verbose bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "smartsample",
		Short: "Pick a visually diverse subset of images",
		Long: `smartsample - select K of N images so the chosen ones look as different
from each other as possible.

Every image is reduced to a perceptual fingerprint (difference hash,
average hash and a few color bits). Strategies:
  rolling_window   greedy walk comparing against the last W picks (default)
  exact            greedy walk comparing against every pick
  bucket           stratified sampling across 64 feature buckets
  farthest_point   maximin over the whole set

Examples:
  # Keep 50 images of a folder, print the chosen paths
  smartsample select ./photos -n 50

  # Recurse, only JPEGs, copy the picks
  smartsample select ./photos -r --include '**/*.jpg' -n 200 --copy-to ./keep

  # Fingerprints as JSON
  smartsample fingerprint ./photos --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newSelectCmd(g),
		newFingerprintCmd(g),
		newServeCmd(),
		newCacheCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

var registerMetricsOnce sync.Once

func registerMetrics() {
	registerMetricsOnce.Do(func() {
		metrics.RegisterSelectionMetrics()
		metrics.RegisterHTTPMetrics()
	})
}

// pipelineFlags configure the extractor chain for local runs.
type pipelineFlags struct {
	workers  int
	hashSize int
	redis    []string
	password string
}

func (p *pipelineFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.workers, "workers", 0, "parallel decoders (0 = number of CPUs)")
	cmd.Flags().IntVar(&p.hashSize, "hash-size", 8, "hash grid edge: 8 (132-bit) or 16 (516-bit)")
	cmd.Flags().StringSliceVar(&p.redis, "redis", nil, "redis/valkey addresses for the shared fingerprint cache")
	cmd.Flags().StringVar(&p.password, "redis-password", "", "redis/valkey password")
}

func (p *pipelineFlags) config() config.Config {
	cfg := config.Config{HTTP: config.HTTPConfig{Port: 8080}}
	cfg.Selection.Workers = p.workers
	cfg.Fingerprint.HashSize = p.hashSize
	if len(p.redis) > 0 {
		cfg.Cache.Redis.Enabled = true
		cfg.Cache.Redis.Addrs = p.redis
		cfg.Cache.Redis.Password = p.password
	}
	cfg.ApplyDefaults()
	return cfg
}

func buildApp(ctx context.Context, cfg config.Config, g *globalFlags) (*app.App, *zap.Logger, error) {
	logger, err := logpkg.NewCLI(g.verbose)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	registerMetrics()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
