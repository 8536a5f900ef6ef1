package reporting

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/fidelity/internal/cache"
	"github.com/spboyer/fidelity/internal/models"
)

const ruleWidth = 80

// InterpretScore returns a plain-language label for a numeric score (0–1).
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// Table is a plain text table whose columns are aligned by terminal display
// width, so model and section names in any script line up.
type Table struct {
	Headers []string
	Rows    [][]string
	// MaxWidth truncates cells wider than this many columns. Zero means no limit.
	MaxWidth int
}

func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

func (t *Table) Write(w io.Writer) {
	widths := make([]int, len(t.Headers))
	cell := func(s string) string {
		if t.MaxWidth > 0 {
			return runewidth.Truncate(s, t.MaxWidth, "…")
		}
		return s
	}

	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(row[i])))
		}
	}

	writeRow := func(cells []string) {
		padded := make([]string, len(widths))
		for i := range widths {
			var c string
			if i < len(cells) {
				c = cell(cells[i])
			}
			if i == len(widths)-1 {
				padded[i] = c
				continue
			}
			padded[i] = padRight(c, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, "  "), " ")) //nolint:errcheck
	}

	writeRow(t.Headers)
	total := 0
	for _, wd := range widths {
		total += wd
	}
	fmt.Fprintln(w, strings.Repeat("-", total+2*(len(widths)-1))) //nolint:errcheck
	for _, row := range t.Rows {
		writeRow(row)
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// WriteConsole renders a comparison report for a terminal: a ranked summary
// table followed by a per-candidate breakdown of schema errors and sections.
func WriteConsole(w io.Writer, report *models.ComparisonReport) {
	out := func(format string, args ...any) {
		fmt.Fprintf(w, format, args...) //nolint:errcheck
	}
	rule := strings.Repeat("=", ruleWidth)
	thin := strings.Repeat("-", ruleWidth)

	out("%s\nINSPECTION TEMPLATE EVALUATION REPORT\n%s\n", rule, rule)
	out("Source: %s\n", report.SourceFile)
	out("Generated: %s\n\n", report.Timestamp)

	if len(report.Evaluations) == 0 && len(report.Failed) == 0 {
		out("No evaluations found.\n")
		return
	}

	ranked := slices.Clone(report.Evaluations)
	slices.SortStableFunc(ranked, func(a, b models.EvaluationResult) int {
		switch {
		case a.Scores.OverallScore > b.Scores.OverallScore:
			return -1
		case a.Scores.OverallScore < b.Scores.OverallScore:
			return 1
		}
		return 0
	})

	summary := &Table{
		Headers:  []string{"Model", "Schema", "Structure", "Semantic", "Config", "Overall"},
		MaxWidth: 40,
	}
	for _, e := range ranked {
		s := e.Scores
		summary.Append(e.Metadata.ModelID, percent(s.SchemaCompliance), percent(s.StructuralAccuracy),
			percent(s.SemanticAccuracy), percent(s.ConfigAccuracy), percent(s.OverallScore))
	}
	summary.Write(w)
	out("\n")

	if report.BestModel != nil && report.BestScore != nil && report.AverageScore != nil {
		out("Best Model: %s\n", *report.BestModel)
		out("Best Score: %s (%s)\n", percent(*report.BestScore), InterpretScore(*report.BestScore))
		out("Average Score: %s\n\n", percent(*report.AverageScore))
	}

	for _, f := range report.Failed {
		out("FAILED: %s: %s\n", f.ModelFile, f.Error)
	}
	if len(report.Failed) > 0 {
		out("\n")
	}

	for _, e := range report.Evaluations {
		out("%s\nMODEL: %s\nProvider: %s\n%s\n", thin, e.Metadata.ModelID, e.Metadata.Provider, thin)

		sv := e.SchemaValidation
		if sv.IsValid {
			out("Schema Validation: PASSED\n")
		} else {
			out("Schema Validation: FAILED (%d errors)\n", sv.ErrorCount)
			for _, ve := range sv.Errors[:min(5, len(sv.Errors))] {
				out("  - %s: %s\n", ve.Path, ve.Message)
			}
			if sv.ErrorCount > 5 {
				out("  ... and %d more errors\n", sv.ErrorCount-5)
			}
		}
		if e.Assessment != "" {
			out("Assessment: %s\n", e.Assessment)
		}
		out("\nSections:\n")

		sections := &Table{
			Headers:  []string{"Source Section", "Model Section", "Name Match", "Fields", "Score"},
			MaxWidth: 25,
		}
		for _, s := range e.Sections {
			modelName := "MISSING"
			if s.ModelSectionName != nil {
				modelName = *s.ModelSectionName
			}
			sections.Append(s.SourceSectionName, modelName,
				fmt.Sprintf("%.0f%%", s.SectionNameSimilarity*100),
				fmt.Sprintf("%d/%d", s.MatchedFields, s.SourceFieldCount),
				fmt.Sprintf("%.0f%%", s.SectionScore*100))
		}
		sections.Write(w)
		out("\n")
	}

	out("%s\n", rule)
}

// WriteCacheSummary renders the ranked models of a cache.
func WriteCacheSummary(w io.Writer, s *cache.Summary) {
	out := func(format string, args ...any) {
		fmt.Fprintf(w, format, args...) //nolint:errcheck
	}
	rule := strings.Repeat("=", ruleWidth)

	out("%s\nEVALUATION CACHE SUMMARY\n%s\n", rule, rule)
	out("Source: %s\n", s.SourceFile)
	out("Last Updated: %s\n", s.LastUpdated)
	out("Models Tracked: %d\n", s.ModelCount)
	if s.TotalCost > 0 {
		out("Total Cost: $%.4f\n", s.TotalCost)
	}
	out("\n")

	if best, ok := s.Best(); ok {
		out("Model Rankings (by average overall score):\n")
		t := &Table{
			Headers:  []string{"Rank", "Model", "Avg Score", "Runs", "Spread", "95% CI", "Cost"},
			MaxWidth: 35,
		}
		for _, r := range s.Rows {
			cost, ci := "-", "-"
			if r.TotalCost > 0 {
				cost = fmt.Sprintf("$%.4f", r.TotalCost)
			}
			if r.Confidence.Resamples > 0 {
				ci = fmt.Sprintf("%.1f-%.1f", r.Confidence.Lower*100, r.Confidence.Upper*100)
			}
			t.Append(fmt.Sprint(r.Rank), r.Key, percent(r.AverageScore), fmt.Sprint(r.RunCount),
				fmt.Sprintf("±%.1f", r.Recent.StdDev*100), ci, cost)
		}
		t.Write(w)

		out("\nBest Model: %s\n", best.Key)
		out("Average Score: %s (over %d runs)\n", percent(best.AverageScore), best.RunCount)
		for _, r := range s.Contenders() {
			out("Not distinguishable from the best at %.0f%% confidence: %s\n", cache.ConfidenceLevel*100, r.Key)
		}
	}

	out("%s\n", rule)
}

// WriteRunSummary renders one line per reference of a multi-reference run.
func WriteRunSummary(w io.Writer, reports []*models.ComparisonReport) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(w, "%s\nEVALUATION SUMMARY\n%s\n", rule, rule) //nolint:errcheck

	t := &Table{
		Headers:  []string{"Reference", "Models", "Failed", "Best Model", "Best Score", "Average"},
		MaxWidth: 30,
	}
	for _, r := range reports {
		best, bestScore, avg := "N/A", "N/A", "N/A"
		if r.BestModel != nil {
			best = *r.BestModel
		}
		if r.BestScore != nil {
			bestScore = percent(*r.BestScore)
		}
		if r.AverageScore != nil {
			avg = percent(*r.AverageScore)
		}
		t.Append(filepath.Base(r.SourceFile), fmt.Sprint(len(r.Evaluations)), fmt.Sprint(len(r.Failed)), best, bestScore, avg)
	}
	t.Write(w)
}
