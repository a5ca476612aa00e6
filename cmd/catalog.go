package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var shortCode, description string

	cmd := &cobra.Command{
		Use:   "register FRAME...",
		Short: "Register a board sample from one or more photos",
		Example: `  # One photo
  board-finder register --sku AB-12 --description "Freijó natural" board.jpg

  # Several frames of the same sample
  board-finder register --sku AB-12 --description "Freijó natural" frames/*.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames := make([][]byte, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				frames = append(frames, data)
			}

			app, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			item, err := app.CatalogService.Register(cmd.Context(), frames, shortCode, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %d %s (%d fingerprints, image %s)\n",
				item.ID, item.ShortCode, item.FingerprintCount, item.ImageRef)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortCode, "sku", "", "Short code of the sample")
	cmd.Flags().StringVar(&description, "description", "", "Description of the sample")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query FILE",
		Short: "Identify a photo against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			app, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			match, err := app.CatalogService.Query(cmd.Context(), data)
			if err != nil {
				return err
			}
			if match == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not found")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tdistance=%d\tid=%d\n",
				match.ShortCode, match.Description, match.Distance, match.ItemID)
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered samples, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			items, err := app.CatalogService.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSKU\tDESCRIPTION\tFRAMES\tCREATED")
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
					it.ID, it.ShortCode, it.Description, it.FingerprintCount, it.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}
