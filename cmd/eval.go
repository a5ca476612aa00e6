package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "eval DIR",
		Short: "Check how the match threshold separates labelled samples",
		Long: `Reads DIR as one sub-directory per physical sample, each holding several
photos of that sample, and reports the closest same-sample and other-sample
fingerprint distances against the configured threshold.`,
		Example: `  board-finder eval testdata/boards
  MATCH_POLICY=single board-finder eval testdata/boards -o report.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := readGroups(args[0])
			if err != nil {
				return err
			}

			app, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.CatalogService.Calibrate(cmd.Context(), groups)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("marshal report: %w", err)
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			slog.Info("Report written", "path", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the YAML report to a file instead of stdout")

	return cmd
}

// readGroups читает DIR/<образец>/<кадр>
func readGroups(dir string) (map[string][][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][][]byte)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, e.Name(), f.Name()))
			if err != nil {
				return nil, err
			}
			groups[e.Name()] = append(groups[e.Name()], data)
		}
	}
	return groups, nil
}
