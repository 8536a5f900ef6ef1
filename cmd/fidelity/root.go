package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fidelity",
		Short: "Fidelity - score model-extracted inspection templates",
		Long: `Fidelity scores inspection templates extracted by language models against
hand-verified reference templates.

Each candidate is checked against the template schema, matched section by
section and field by field with the reference, optionally reviewed by a
semantic judge, and ranked. Results accumulate in a per-reference cache so
models can be compared across runs.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newEvalCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newRenumberCommand())
	cmd.AddCommand(newMergeCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
