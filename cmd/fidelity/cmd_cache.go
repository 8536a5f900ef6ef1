package main

import (
	"fmt"

	"github.com/spboyer/fidelity/internal/cache"
	"github.com/spboyer/fidelity/internal/reporting"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the run cache",
		Long: `Inspect the run cache.

Each reference template has its own cache recording every evaluated model's
running totals, best and latest scores, and its ten most recent runs. The cache
lives in cache.dir, or in an Azure Storage container when cache.backend is
"blob".`,
	}

	cmd.AddCommand(newCacheShowCommand())

	return cmd
}

func newCacheShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <reference.json>",
		Short: "Show the model rankings recorded for a reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}

			c, status, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loading cache: %w", err)
			}

			out := cmd.OutOrStdout()
			if status == cache.StatusCreated {
				fmt.Fprintf(out, "No cached evaluations for %s\n", args[0]) //nolint:errcheck
				return nil
			}

			summary := cache.Summarize(c)
			if format == "json" {
				return printJSON(out, summary)
			}
			reporting.WriteCacheSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}
