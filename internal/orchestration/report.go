package orchestration

import (
	"slices"
	"time"

	"github.com/spboyer/fidelity/internal/metrics"
	"github.com/spboyer/fidelity/internal/models"
)

// BuildReport ranks evaluations against one reference by overall score, highest
// first. Evaluations with equal scores keep their input order.
func BuildReport(sourceFile string, evaluations []models.EvaluationResult) *models.ComparisonReport {
	report := &models.ComparisonReport{
		SourceFile:   sourceFile,
		Evaluations:  evaluations,
		RankedModels: []string{},
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	if report.Evaluations == nil {
		report.Evaluations = []models.EvaluationResult{}
	}
	if len(evaluations) == 0 {
		return report
	}

	ranked := slices.Clone(evaluations)
	slices.SortStableFunc(ranked, func(a, b models.EvaluationResult) int {
		switch {
		case a.Scores.OverallScore > b.Scores.OverallScore:
			return -1
		case a.Scores.OverallScore < b.Scores.OverallScore:
			return 1
		}
		return 0
	})

	var scores []float64
	for _, e := range ranked {
		report.RankedModels = append(report.RankedModels, e.Metadata.ModelID)
	}
	for _, e := range evaluations {
		scores = append(scores, e.Scores.OverallScore)
	}

	best := ranked[0]
	avg := metrics.Mean(scores)
	report.BestModel = &best.Metadata.ModelID
	report.BestScore = &best.Scores.OverallScore
	report.AverageScore = &avg
	return report
}
