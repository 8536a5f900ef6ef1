package cache

import (
	"github.com/spboyer/fidelity/internal/metrics"
)

// SummaryRow describes one ranked model.
type SummaryRow struct {
	Rank         int     `json:"rank"`
	Key          string  `json:"key"`
	AverageScore float64 `json:"average_score"`
	RunCount     int     `json:"run_count"`
	TotalCost    float64 `json:"total_cost"`
	AverageCost  float64 `json:"average_cost"`
	BestScore    float64 `json:"best_score"`
	LatestScore  float64 `json:"latest_score"`

	// Recent is the spread of the overall scores still in the run history.
	Recent     metrics.Spread   `json:"recent"`
	// Confidence bounds the mean of the recent overall scores.
	Confidence metrics.Interval `json:"confidence"`
}

// Summary is the ranked view of a cache.
type Summary struct {
	SourceFile  string       `json:"source_file"`
	LastUpdated string       `json:"last_updated"`
	ModelCount  int          `json:"model_count"`
	TotalCost   float64      `json:"total_cost"`
	Rows        []SummaryRow `json:"rows"`
}

// ConfidenceLevel is the level of [SummaryRow.Confidence].
const ConfidenceLevel = 0.95

// Best returns the top ranked row, if any.
func (s *Summary) Best() (SummaryRow, bool) {
	if len(s.Rows) == 0 {
		return SummaryRow{}, false
	}
	return s.Rows[0], true
}

// Summarize ranks the cached models.
func Summarize(c *EvaluationCache) *Summary {
	s := &Summary{
		SourceFile:  c.SourceFile,
		LastUpdated: c.LastUpdated,
		ModelCount:  len(c.Models),
		TotalCost:   c.TotalCost(),
	}

	for i, r := range c.Rankings() {
		m := c.Models[r.Key]

		var recent []float64
		for _, h := range m.RunHistory {
			recent = append(recent, h.OverallScore)
		}

		s.Rows = append(s.Rows, SummaryRow{
			Rank:         i + 1,
			Key:          r.Key,
			AverageScore: r.AverageScore,
			RunCount:     r.RunCount,
			TotalCost:    m.TotalCost,
			AverageCost:  m.AverageCost(),
			BestScore:    m.BestScore,
			LatestScore:  m.LatestScore,
			Recent:       metrics.Describe(recent),
			Confidence:   metrics.MeanInterval(recent, ConfidenceLevel, 1),
		})
	}
	return s
}

// Contenders returns the rows ranked below the best whose recent scores cannot
// be told apart from the best model's at ConfidenceLevel.
func (s *Summary) Contenders() []SummaryRow {
	best, ok := s.Best()
	if !ok {
		return nil
	}

	var out []SummaryRow
	for _, r := range s.Rows[1:] {
		if r.RunCount > 1 && best.RunCount > 1 && r.Confidence.Overlaps(best.Confidence) {
			out = append(out, r)
		}
	}
	return out
}
