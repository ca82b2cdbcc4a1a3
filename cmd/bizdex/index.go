package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/repository/dataset"
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Embed and index establishment records from a data file",
	Long: `Index reads registry records from a JSON array, JSON Lines or a .parquet
file, normalizes them, embeds their search text in batches and writes them to
the index.

Records that fail normalization are reported and skipped. A batch whose
embedding fails is counted as failed; the run continues with the next batch.
The command waits until the backend has indexed everything it wrote.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.EmbeddingEnabled() {
			return errors.New("indexing needs an embedding provider: set embedding.provider")
		}

		docs, rejected, err := dataset.Load(args[0])
		if err != nil {
			return err //nolint:wrapcheck // already carries the path
		}
		for _, r := range rejected {
			logger.Warn("Record rejected", zap.Int("position", r.Position), zap.Error(r.Err))
		}
		if len(docs) == 0 {
			return fmt.Errorf("%s: no valid records", args[0])
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := newApp(ctx, &cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		rep, err := a.indexer.Run(ctx, docs)

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "run %s: %d indexed, %d failed (%d failed batches of %d), %d rejected, %s\n",
			rep.RunID, rep.Succeeded, rep.Failed, rep.FailedBatches, rep.Batches,
			len(rejected), rep.Duration.Round(1e6))
		if rep.FirstErr != nil {
			fmt.Fprintf(w, "first failure: %v\n", rep.FirstErr)
		}
		if err != nil {
			return fmt.Errorf("index run %s: %w", rep.RunID, err)
		}
		if rep.Succeeded == 0 {
			return errors.New("no document was indexed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
