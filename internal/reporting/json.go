package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spboyer/fidelity/internal/models"
)

// WriteJSON writes the report as indented JSON, creating the parent directory
// if needed.
func WriteJSON(report *models.ComparisonReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// BelowThreshold lists the candidates whose overall score is under threshold.
// Candidates that could not be evaluated are always listed.
func BelowThreshold(report *models.ComparisonReport, threshold float64) []string {
	var below []string
	for _, e := range report.Evaluations {
		if e.Scores.OverallScore < threshold {
			below = append(below, e.ModelFile)
		}
	}
	for _, f := range report.Failed {
		below = append(below, f.ModelFile)
	}
	return below
}
