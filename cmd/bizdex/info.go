package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the index document count and indexing state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := newApp(ctx, &cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.index.Describe(ctx)
		if err != nil {
			return fmt.Errorf("index %s: %w", cfg.Index.Name, err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "index:     %s\n", stats.Name)
		fmt.Fprintf(w, "documents: %d\n", stats.NumDocs)
		fmt.Fprintf(w, "indexed:   %.0f%%\n", stats.PercentIndexed*100)
		fmt.Fprintf(w, "ready:     %t\n", stats.Ready())
		if stats.Failures > 0 {
			fmt.Fprintf(w, "failures:  %d\n", stats.Failures)
		}
		fmt.Fprintf(w, "semantic:  %t\n", a.gateway.Available())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
