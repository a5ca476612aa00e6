package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"board-finder/config"
	"board-finder/internal/container"
)

type rootOptions struct {
	memory bool
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "board-finder",
		Short: "Find decorative boards in a catalog by photo",
		Long: `board-finder registers physical board samples by their photos and
identifies a new photo of a sample against the registered catalog.

Each sample is stored with a perceptual fingerprint per registration frame;
a query is matched to the closest fingerprint within the configured threshold.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.memory, "memory", false, "Keep the catalog in memory instead of CATALOG_DB")

	cmd.AddCommand(
		newBotCmd(opts),
		newRegisterCmd(opts),
		newQueryCmd(opts),
		newListCmd(opts),
		newEvalCmd(opts),
	)

	return cmd
}

func (o *rootOptions) open(cmd *cobra.Command) (*container.Container, error) {
	return container.Open(cmd.Context(), o.cfg, o.memory)
}
