package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	indexuc "github.com/kailas-cloud/bizdex/internal/usecase/index"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the search index",
	Long: `Provision creates the establishment index with its full mapping: exact-match
tags, Portuguese full-text fields, numerics, the geo point and the HNSW embedding.

When the index already exists the outcome follows index.on_existing from the
config; --skip-existing and --recreate override it. Dropping an index (with its
documents) only happens with --recreate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		recreate, _ := cmd.Flags().GetBool("recreate")
		skip, _ := cmd.Flags().GetBool("skip-existing")

		policy, err := provisionPolicy(cfg.Index.OnExisting, recreate, skip)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := newApp(ctx, &cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.index.Provision(ctx, policy)
		if err != nil {
			return fmt.Errorf("provision index %s: %w", out.Index, err)
		}

		w := cmd.OutOrStdout()
		switch {
		case out.Recreated:
			fmt.Fprintf(w, "index %s recreated\n", out.Index)
		case out.Created:
			fmt.Fprintf(w, "index %s created\n", out.Index)
		case out.AlreadyExisted:
			fmt.Fprintf(w, "index %s already exists, left untouched\n", out.Index)
		}
		return nil
	},
}

// provisionPolicy resolves flags against the configured policy.
// A configured "recreate" still needs the explicit flag.
func provisionPolicy(configured string, recreate, skip bool) (indexuc.Policy, error) {
	switch {
	case recreate && skip:
		return "", errors.New("--recreate and --skip-existing are mutually exclusive")
	case recreate:
		return indexuc.PolicyRecreate, nil
	case skip:
		return indexuc.PolicySkip, nil
	}

	policy, err := indexuc.ParsePolicy(configured)
	if err != nil {
		return "", fmt.Errorf("index.on_existing: %w", err)
	}
	if policy == indexuc.PolicyRecreate {
		return "", errors.New("index.on_existing=recreate drops data; pass --recreate explicitly")
	}
	return policy, nil
}

func init() {
	provisionCmd.Flags().Bool("recreate", false, "drop the existing index and its documents, then create it again")
	provisionCmd.Flags().Bool("skip-existing", false, "succeed without changes when the index already exists")

	rootCmd.AddCommand(provisionCmd)
}
