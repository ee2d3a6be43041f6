package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/domain"
	domsel "github.com/kailas-cloud/smartsample/internal/domain/selection"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
	selectionuc "github.com/kailas-cloud/smartsample/internal/usecase/selection"
)

type selectFlags struct {
	pipeline pipelineFlags

	count          int
	strategy       string
	window         int
	seed           int64
	floor          int
	resolveNearest bool

	recursive bool
	include   []string
	exclude   []string

	jsonOut bool
	copyTo  string
}

func newSelectCmd(g *globalFlags) *cobra.Command {
	f := &selectFlags{}
	cmd := &cobra.Command{
		Use:   "select <dir | files...> -n COUNT",
		Short: "Select a diverse subset of images",
		Long: `Fingerprint the input images and keep exactly COUNT of them.

A single directory argument is scanned (use -r to recurse); otherwise every
argument is taken as a file. Files are walked folder by folder in natural
name order. Unreadable images are reported on stderr and left out.

Output lists the selected paths, one per line, unless --json is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, g, f, args)
		},
	}

	cmd.Flags().IntVarP(&f.count, "count", "n", 0, "number of images to keep (required)")
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", string(strategy.Default),
		"rolling_window, exact, bucket or farthest_point")
	cmd.Flags().IntVarP(&f.window, "window", "w", domsel.DefaultWindowSize, "rolling window size")
	cmd.Flags().Int64Var(&f.seed, "seed", domsel.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&f.floor, "duplicate-distance", domsel.DefaultDuplicateDistance,
		"never pick an image within this many bits of an earlier pick unless forced")
	cmd.Flags().BoolVar(&f.resolveNearest, "resolve-nearest", false, "report the nearest kept image for each dropped one")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "scan subdirectories")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "glob patterns to include (doublestar syntax)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "glob patterns to exclude (doublestar syntax)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the full result as JSON")
	cmd.Flags().StringVar(&f.copyTo, "copy-to", "", "copy the selected images into this directory")
	f.pipeline.bind(cmd)
	_ = cmd.MarkFlagRequired("count")

	return cmd
}

func runSelect(cmd *cobra.Command, g *globalFlags, f *selectFlags, args []string) error {
	ctx := cmd.Context()

	st, err := strategy.Parse(f.strategy)
	if err != nil {
		return err
	}
	if st == strategy.Exact && !f.jsonOut {
		cmd.PrintErrf("note: exact is quadratic; inputs above %d images are slow\n", strategy.ExactAdvisoryLimit)
	}

	cfg := f.pipeline.config()
	a, logger, err := buildApp(ctx, cfg, g)
	if err != nil {
		return err
	}
	defer a.Close()
	defer func() { _ = logger.Sync() }()

	opts := cfg.SelectionOptions()
	opts.Strategy = st
	opts.WindowSize = f.window
	opts.Seed = f.seed
	opts.DuplicateDistance = f.floor
	opts.ResolveNearest = f.resolveNearest

	req := selectionuc.Request{Target: f.count, Options: opts}
	if dir, ok := singleDir(args); ok {
		req.Dir = dir
		req.Filter = domain.ScanFilter{Recursive: f.recursive, Include: f.include, Exclude: f.exclude}
	} else {
		req.Paths = args
	}

	report, err := a.Selection.SelectFiles(ctx, req)
	for _, d := range report.Skipped {
		logger.Warn("Skipped unreadable image", zap.String("path", d.ID), zap.Error(d.Err))
	}
	if err != nil {
		return err
	}

	var copied []string
	if f.copyTo != "" {
		copied, err = a.Corpus.CopyTo(ctx, report.Selected, f.copyTo)
		if err != nil {
			return fmt.Errorf("copy selection: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		return writeSelectJSON(out, report, copied)
	}
	for _, id := range report.Selected {
		fmt.Fprintln(out, id)
	}
	cmd.PrintErrf("selected %d of %d images (%s, %d skipped)\n",
		len(report.Selected), report.Inputs, report.Strategy, len(report.Skipped))
	return nil
}

// singleDir reports whether args is exactly one existing directory.
func singleDir(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return "", false
	}
	return args[0], true
}

type selectOutput struct {
	Strategy        string            `json:"strategy"`
	Inputs          int               `json:"inputs"`
	Selected        []string          `json:"selected"`
	Excluded        []string          `json:"excluded"`
	NearestIncluded map[string]string `json:"nearest_included,omitempty"`
	Buckets         []bucketOutput    `json:"buckets,omitempty"`
	Skipped         []skippedOutput   `json:"skipped,omitempty"`
	Copied          []string          `json:"copied,omitempty"`
}

type bucketOutput struct {
	Key      int     `json:"key"`
	Label    string  `json:"label"`
	Size     int     `json:"size"`
	Kept     int     `json:"kept"`
	Excluded int     `json:"excluded"`
	Stride   float64 `json:"stride"`
}

type skippedOutput struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func writeSelectJSON(w io.Writer, r selectionuc.Report, copied []string) error {
	out := selectOutput{
		Strategy:        string(r.Strategy),
		Inputs:          r.Inputs,
		Selected:        r.Selected,
		Excluded:        r.Excluded,
		NearestIncluded: r.NearestIncluded,
		Copied:          copied,
	}
	if out.Selected == nil {
		out.Selected = []string{}
	}
	if out.Excluded == nil {
		out.Excluded = []string{}
	}
	for _, b := range r.Buckets {
		out.Buckets = append(out.Buckets, bucketOutput(b))
	}
	for _, d := range r.Skipped {
		out.Skipped = append(out.Skipped, skippedOutput{Path: d.ID, Reason: d.Err.Error()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
