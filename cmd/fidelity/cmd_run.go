package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/internal/orchestration"
	"github.com/spboyer/fidelity/internal/reporting"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	opts := &evalOptions{}
	var patterns []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every candidate for every reference in the project",
		Long: `Discover reference templates in paths.references and, for each one, the
candidates under paths.outputs whose file name contains the reference name.
Every candidate is scored against its reference; a JSON report per reference
is written to paths.results and the run cache is updated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandE(cmd, opts, patterns)
		},
	}

	addEvalFlags(cmd, opts)
	cmd.Flags().StringArrayVar(&patterns, "candidate", nil, "Only evaluate candidates whose file name matches this glob (can be repeated)")

	return cmd
}

func runCommandE(cmd *cobra.Command, opts *evalOptions, patterns []string) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	refs, err := orchestration.FindReferences(cfg.Paths.References)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no reference templates found in %s", cfg.Paths.References)
	}

	stamp := time.Now().Format("20060102_150405")
	var reports []*models.ComparisonReport

	for _, ref := range refs {
		stem := fileStem(ref)

		candidates, err := orchestration.FindCandidates(cfg.Paths.Outputs, stem)
		if err != nil {
			return fmt.Errorf("finding candidates for %s: %w", ref, err)
		}
		candidates, err = orchestration.FilterCandidates(candidates, patterns)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			slog.WarnContext(ctx, "No candidates found", "reference", ref)
			continue
		}

		report, err := evaluateReference(cmd, cfg, opts, ref, candidates)
		if err != nil {
			return err
		}
		if len(report.Evaluations) == 0 {
			slog.WarnContext(ctx, "No successful evaluations", "reference", ref, "failed", len(report.Failed))
		}

		path := filepath.Join(cfg.Paths.Results, fmt.Sprintf("evaluation_%s_%s.json", stem, stamp))
		if err := reporting.WriteJSON(report, path); err != nil {
			return err
		}
		slog.DebugContext(ctx, "Report saved", "path", path)

		if err := recordRuns(ctx, cfg, report); err != nil {
			return err
		}
		reports = append(reports, report)
	}

	if len(reports) == 0 {
		return errors.New("no evaluations completed")
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		if err := printJSON(out, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			reporting.WriteConsole(out, r)
		}
		reporting.WriteRunSummary(out, reports)
	}

	return finish(cfg, reports)
}
