package main

import (
	"fmt"

	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/internal/reporting"
	"github.com/spf13/cobra"
)

func newEvalCommand() *cobra.Command {
	opts := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <reference.json> <candidate.json> [candidate.json ...]",
		Short: "Score candidate templates against a reference template",
		Long: `Score one or more model-extracted templates against a hand-verified
reference template and rank them.

Candidates are evaluated concurrently. A candidate that cannot be read is
reported as failed without stopping the others. Settings not given as flags
come from .fidelity.yaml.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return evalCommandE(cmd, opts, args)
		},
	}

	addEvalFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the JSON report to this path")

	return cmd
}

func evalCommandE(cmd *cobra.Command, opts *evalOptions, args []string) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	refPath := args[0]
	report, err := evaluateReference(cmd, cfg, opts, refPath, args[1:])
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := reporting.WriteJSON(report, opts.output); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		if err := printJSON(out, report); err != nil {
			return err
		}
	} else {
		reporting.WriteConsole(out, report)
	}

	if len(report.Evaluations) == 0 {
		return fmt.Errorf("no candidate could be evaluated against %s", refPath)
	}

	if err := recordRuns(cmd.Context(), cfg, report); err != nil {
		return err
	}
	return finish(cfg, []*models.ComparisonReport{report})
}
