package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

func newCacheCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared fingerprint cache",
	}

	var p pipelineFlags
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached fingerprints for the current hash size",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(p.redis) == 0 {
				return errors.New("--redis is required")
			}
			a, logger, err := buildApp(cmd.Context(), p.config(), g)
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = logger.Sync() }()

			n, err := a.Cache.Purge(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("purged %d fingerprints (%s)\n", n, a.Layout.Tag())
			return nil
		},
	}
	p.bind(purge)
	cmd.AddCommand(purge)
	return cmd
}
