package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bizdex/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of bizdex",
	// No config needed.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bizdex %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
