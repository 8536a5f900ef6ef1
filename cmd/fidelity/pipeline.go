package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spboyer/fidelity/internal/cache"
	"github.com/spboyer/fidelity/internal/judge"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/internal/orchestration"
	"github.com/spboyer/fidelity/internal/projectconfig"
	"github.com/spboyer/fidelity/internal/reporting"
	"github.com/spboyer/fidelity/internal/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// newJudge is a test hook for replacing the semantic judge in tests
	newJudge = func(cfg projectconfig.JudgeConfig) judge.Judge {
		return judge.NewCopilotJudge(judge.CopilotJudgeOptions{
			Model:   cfg.Model,
			Timeout: cfg.TimeoutDuration(),
		})
	}
	// startSpinner is a test hook for replacing the spinner in tests
	startSpinner = spinner.Start
	// isTerminal is a test hook; the spinner only draws on a terminal
	isTerminal = func(w io.Writer) bool {
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
)

// evalOptions holds the flags shared by the eval and run commands. Flags the
// user did not set leave the project configuration alone.
type evalOptions struct {
	format    string
	output    string
	junit     string
	threshold float64
	judge     bool
	model     string
	workers   int
	noCache   bool
	verbose   bool
}

func addEvalFlags(cmd *cobra.Command, opts *evalOptions) {
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().StringVar(&opts.junit, "junit", "", "Write a JUnit XML report to this path")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Minimum overall score every candidate must reach (0 disables the check)")
	cmd.Flags().BoolVar(&opts.judge, "judge", false, "Refine similarity scores with the Copilot semantic judge")
	cmd.Flags().StringVar(&opts.model, "model", "", "Judge model (implies --judge)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of candidates evaluated concurrently")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Do not record results in the run cache")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a line per evaluated candidate")
}

func checkFormat(format string) error {
	if format != "table" && format != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", format)
	}
	return nil
}

// loadConfig loads the project configuration for the working directory, with
// relative paths anchored at the project root, and applies the flags the user
// set. opts may be nil for commands without evaluation flags.
func loadConfig(cmd *cobra.Command, opts *evalOptions) (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	loaded, err := projectconfig.Load(wd)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Resolved()
	if opts == nil {
		return cfg, nil
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		enabled := true
		cfg.Judge.Model = opts.model
		cfg.Judge.Enabled = &enabled
	}
	if flags.Changed("judge") {
		cfg.Judge.Enabled = &opts.judge
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if opts.noCache {
		disabled := false
		cfg.Cache.Enabled = &disabled
	}
	if flags.Changed("junit") {
		cfg.Report.JUnit = opts.junit
	}
	if flags.Changed("threshold") {
		cfg.Report.Threshold = &opts.threshold
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func judgeEnabled(cfg *projectconfig.ProjectConfig) bool {
	return cfg.Judge.Enabled != nil && *cfg.Judge.Enabled
}

func newEvaluator(cfg *projectconfig.ProjectConfig) *orchestration.Evaluator {
	opts := []orchestration.EvaluatorOption{orchestration.WithWorkers(cfg.Workers)}
	if judgeEnabled(cfg) {
		opts = append(opts, orchestration.WithJudge(newJudge(cfg.Judge)))
	}
	return orchestration.NewEvaluator(opts...)
}

// evaluateReference scores candPaths against the reference at refPath,
// reporting progress on the command's error stream.
func evaluateReference(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, opts *evalOptions, refPath string, candPaths []string) (*models.ComparisonReport, error) {
	ev := newEvaluator(cfg)
	errOut := cmd.ErrOrStderr()

	var mu sync.Mutex
	var spin *spinner.Spinner

	switch {
	case opts.verbose:
		ev.OnProgress(func(event orchestration.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			switch event.EventType {
			case orchestration.EventCandidateComplete:
				fmt.Fprintf(errOut, "[%d/%d] %s: %.1f%%\n", event.Num, event.Total, event.ModelFile, event.Result.Scores.OverallScore*100) //nolint:errcheck
			case orchestration.EventCandidateFailed:
				fmt.Fprintf(errOut, "[%d/%d] %s: %v\n", event.Num, event.Total, event.ModelFile, event.Err) //nolint:errcheck
			}
		})
	case judgeEnabled(cfg) && isTerminal(errOut):
		spin = startSpinner(errOut, fmt.Sprintf("Evaluating %d candidate(s) against %s", len(candPaths), filepath.Base(refPath)))
		defer spin.Stop()

		done := 0
		ev.OnProgress(func(event orchestration.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			if event.EventType == orchestration.EventCandidateStart {
				return
			}
			done++
			spin.Update(fmt.Sprintf("Judging candidates against %s (%d/%d done)", filepath.Base(refPath), done, event.Total))
		})
	}

	report, err := ev.EvaluateFiles(cmd.Context(), refPath, candPaths)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return nil, fmt.Errorf("evaluating candidates for %s: %w", refPath, err)
	}
	return report, nil
}

func openStore(cfg *projectconfig.ProjectConfig) (cache.Store, error) {
	if cfg.Cache.Backend == projectconfig.CacheBackendBlob {
		store, err := cache.NewBlobStore(cfg.Cache.Blob.AccountURL, cfg.Cache.Blob.Container, nil)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return cache.NewFileStore(cfg.Cache.Dir), nil
}

// recordRuns adds the successful evaluations of report to the reference's cache.
func recordRuns(ctx context.Context, cfg *projectconfig.ProjectConfig, report *models.ComparisonReport) error {
	if cfg.Cache.Enabled == nil || !*cfg.Cache.Enabled || len(report.Evaluations) == 0 {
		return nil
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}

	c, err := cache.Update(ctx, store, report.SourceFile, report.Evaluations)
	if err != nil {
		return fmt.Errorf("updating cache: %w", err)
	}
	slog.DebugContext(ctx, "Cache updated", "source", report.SourceFile, "models", len(c.Models))
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// junitPath returns the JUnit path for the report of sourceFile. When several
// references are reported at once each gets its own file, suffixed with the
// reference name.
func junitPath(base, sourceFile string, perReference bool) string {
	if !perReference {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(base, ext), fileStem(sourceFile), ext)
}

// finish writes the JUnit reports and applies the score threshold.
func finish(cfg *projectconfig.ProjectConfig, reports []*models.ComparisonReport) error {
	threshold := 0.0
	if cfg.Report.Threshold != nil {
		threshold = *cfg.Report.Threshold
	}

	if cfg.Report.JUnit != "" {
		for _, r := range reports {
			if err := reporting.WriteJUnitXML(r, threshold, junitPath(cfg.Report.JUnit, r.SourceFile, len(reports) > 1)); err != nil {
				return fmt.Errorf("writing JUnit report: %w", err)
			}
		}
	}

	if threshold <= 0 {
		return nil
	}

	var below []string
	for _, r := range reports {
		below = append(below, reporting.BelowThreshold(r, threshold)...)
	}
	if len(below) > 0 {
		return &CheckFailedError{
			Message: fmt.Sprintf("%d candidate(s) below threshold %.2f: %s", len(below), threshold, strings.Join(below, ", ")),
		}
	}
	return nil
}
