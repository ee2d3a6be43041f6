package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/domain"
)

type fingerprintFlags struct {
	pipeline  pipelineFlags
	recursive bool
	include   []string
	exclude   []string
	jsonOut   bool
}

func newFingerprintCmd(g *globalFlags) *cobra.Command {
	f := &fingerprintFlags{}
	cmd := &cobra.Command{
		Use:   "fingerprint <dir | files...>",
		Short: "Print perceptual fingerprints",
		Long: `Print one fingerprint per readable image as "<hex> <path>".
Hex is most significant word first; width is 132 bits for --hash-size 8
and 516 bits for --hash-size 16.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(cmd, g, f, args)
		},
	}
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "scan subdirectories")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "glob patterns to include (doublestar syntax)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "glob patterns to exclude (doublestar syntax)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print JSON lines")
	f.pipeline.bind(cmd)
	return cmd
}

type fingerprintOutput struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	Width       int    `json:"width"`
}

func runFingerprint(cmd *cobra.Command, g *globalFlags, f *fingerprintFlags, args []string) error {
	ctx := cmd.Context()

	a, logger, err := buildApp(ctx, f.pipeline.config(), g)
	if err != nil {
		return err
	}
	defer a.Close()
	defer func() { _ = logger.Sync() }()

	var sources []domain.Source
	if dir, ok := singleDir(args); ok {
		sources, err = a.Corpus.Scan(ctx, dir, domain.ScanFilter{
			Recursive: f.recursive,
			Include:   f.include,
			Exclude:   f.exclude,
		})
		if err != nil {
			return err
		}
	} else {
		sources = a.Corpus.Order(args)
	}

	cands, skipped, err := a.Fingerprinting.Fingerprint(ctx, sources)
	if err != nil {
		return err
	}
	for _, d := range skipped {
		logger.Warn("Skipped unreadable image", zap.String("path", d.ID), zap.Error(d.Err))
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	for _, c := range cands {
		if f.jsonOut {
			if err := enc.Encode(fingerprintOutput{
				Path:        c.ID,
				Fingerprint: c.Fingerprint.String(),
				Width:       c.Fingerprint.Width(),
			}); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "%s %s\n", c.Fingerprint, c.ID)
	}
	return nil
}
