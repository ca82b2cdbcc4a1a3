// Package main is the entry point for the bizdex CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/config"
	logpkg "github.com/kailas-cloud/bizdex/internal/logger"
)

var (
	cfg    config.Config
	env    string
	logger *zap.Logger
)

// rootCmd is the base command for the bizdex CLI.
var rootCmd = &cobra.Command{
	Use:   "bizdex",
	Short: "Hybrid search over the Brazilian business registry",
	Long: `bizdex indexes establishment records into Redis (Query Engine + JSON) and
serves lexical, semantic and geographic search over them.

Provision the index once, load a data file with "index", then query with
"search" or run the HTTP API with "serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		env, _ = cmd.Flags().GetString("env")
		if env == "" {
			env = config.GetEnv()
		}

		var err error
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			cfg, err = config.LoadFile(path)
		} else {
			cfg, err = config.Load(env)
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err = logpkg.NewLogger(env, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "environment name selecting config/<env>.yaml (default: $ENV or local)")
	rootCmd.PersistentFlags().String("config", "", "explicit config file path, overrides --env")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
