// Package cache accumulates evaluation runs per model across invocations so
// models can be ranked by their average score.
package cache

import (
	"slices"
	"time"

	"github.com/spboyer/fidelity/internal/metrics"
	"github.com/spboyer/fidelity/internal/models"
)

// HistoryLimit is the number of most recent runs kept per model.
const HistoryLimit = 10

var now = time.Now

// HistoryEntry is one run in a model's recent history.
type HistoryEntry struct {
	Timestamp          string  `json:"timestamp"`
	OverallScore       float64 `json:"overall_score"`
	SchemaCompliance   float64 `json:"schema_compliance"`
	StructuralAccuracy float64 `json:"structural_accuracy"`
	SemanticAccuracy   float64 `json:"semantic_accuracy"`
	ConfigAccuracy     float64 `json:"config_accuracy"`
	Cost               float64 `json:"cost"`
	InputTokens        int     `json:"input_tokens"`
	OutputTokens       int     `json:"output_tokens"`
}

// CachedModelResult holds running totals for one model. Averages are derived
// from the totals and RunCount, never stored.
type CachedModelResult struct {
	ModelID  string `json:"model_id"`
	Provider string `json:"provider"`
	RunCount int    `json:"run_count"`

	TotalSchemaCompliance   float64 `json:"total_schema_compliance"`
	TotalStructuralAccuracy float64 `json:"total_structural_accuracy"`
	TotalSemanticAccuracy   float64 `json:"total_semantic_accuracy"`
	TotalConfigAccuracy     float64 `json:"total_config_accuracy"`
	TotalOverallScore       float64 `json:"total_overall_score"`

	TotalCost         float64 `json:"total_cost"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`

	BestScore        float64 `json:"best_score"`
	BestRunTimestamp *string `json:"best_run_timestamp"`

	LatestScore        float64 `json:"latest_score"`
	LatestRunTimestamp *string `json:"latest_run_timestamp"`

	RunHistory []HistoryEntry `json:"run_history"`
}

// AddRun folds one evaluation into the totals. The best score only moves on a
// strict improvement; the latest score always moves.
func (m *CachedModelResult) AddRun(result *models.EvaluationResult) {
	m.RunCount++

	scores := result.Scores
	m.TotalSchemaCompliance += scores.SchemaCompliance
	m.TotalStructuralAccuracy += scores.StructuralAccuracy
	m.TotalSemanticAccuracy += scores.SemanticAccuracy
	m.TotalConfigAccuracy += scores.ConfigAccuracy
	m.TotalOverallScore += scores.OverallScore

	m.TotalCost += result.Usage.Cost
	m.TotalInputTokens += result.Usage.InputTokens
	m.TotalOutputTokens += result.Usage.OutputTokens

	ts := result.Timestamp
	if scores.OverallScore > m.BestScore {
		m.BestScore = scores.OverallScore
		m.BestRunTimestamp = &ts
	}

	m.LatestScore = scores.OverallScore
	m.LatestRunTimestamp = &ts

	m.RunHistory = append(m.RunHistory, HistoryEntry{
		Timestamp:          ts,
		OverallScore:       scores.OverallScore,
		SchemaCompliance:   scores.SchemaCompliance,
		StructuralAccuracy: scores.StructuralAccuracy,
		SemanticAccuracy:   scores.SemanticAccuracy,
		ConfigAccuracy:     scores.ConfigAccuracy,
		Cost:               result.Usage.Cost,
		InputTokens:        result.Usage.InputTokens,
		OutputTokens:       result.Usage.OutputTokens,
	})
	if len(m.RunHistory) > HistoryLimit {
		m.RunHistory = slices.Clone(m.RunHistory[len(m.RunHistory)-HistoryLimit:])
	}
}

func (m *CachedModelResult) average(total float64) float64 {
	if m.RunCount == 0 {
		return 0
	}
	return total / float64(m.RunCount)
}

// AverageScores returns the per-dimension averages, rounded to four places.
func (m *CachedModelResult) AverageScores() models.AggregateScores {
	return models.AggregateScores{
		SchemaCompliance:   metrics.Round4(m.average(m.TotalSchemaCompliance)),
		StructuralAccuracy: metrics.Round4(m.average(m.TotalStructuralAccuracy)),
		SemanticAccuracy:   metrics.Round4(m.average(m.TotalSemanticAccuracy)),
		ConfigAccuracy:     metrics.Round4(m.average(m.TotalConfigAccuracy)),
		OverallScore:       metrics.Round4(m.average(m.TotalOverallScore)),
	}
}

// AverageOverall is the unrounded average overall score, used for ranking.
func (m *CachedModelResult) AverageOverall() float64 {
	return m.average(m.TotalOverallScore)
}

func (m *CachedModelResult) AverageCost() float64 {
	return m.average(m.TotalCost)
}

// EvaluationCache is the persisted state for one reference document.
type EvaluationCache struct {
	SourceFile  string                        `json:"source_file"`
	LastUpdated string                        `json:"last_updated"`
	Models      map[string]*CachedModelResult `json:"models"`

	// Order lists model keys in first-seen order so ranking ties are stable
	// across save and load.
	Order []string `json:"order"`
}

// New returns an empty cache for the given reference file.
func New(sourceFile string) *EvaluationCache {
	return &EvaluationCache{
		SourceFile:  sourceFile,
		LastUpdated: now().Format(time.RFC3339),
		Models:      map[string]*CachedModelResult{},
	}
}

// GetOrCreate returns the entry keyed "{provider}:{model_id}", creating it if needed.
func (c *EvaluationCache) GetOrCreate(modelID, provider string) *CachedModelResult {
	key := models.ModelMetadata{Provider: provider, ModelID: modelID}.Key()
	if m, ok := c.Models[key]; ok {
		return m
	}
	if c.Models == nil {
		c.Models = map[string]*CachedModelResult{}
	}
	m := &CachedModelResult{ModelID: modelID, Provider: provider}
	c.Models[key] = m
	c.Order = append(c.Order, key)
	return m
}

// AddEvaluation records one run under the model that produced it.
func (c *EvaluationCache) AddEvaluation(result *models.EvaluationResult) {
	c.GetOrCreate(result.Metadata.ModelID, result.Metadata.Provider).AddRun(result)
	c.LastUpdated = now().Format(time.RFC3339)
}

// Ranking is one row of [EvaluationCache.Rankings].
type Ranking struct {
	Key          string  `json:"key"`
	AverageScore float64 `json:"average_score"`
	RunCount     int     `json:"run_count"`
}

// Rankings orders models by average overall score, highest first. Ties keep
// the order in which the models were first cached.
func (c *EvaluationCache) Rankings() []Ranking {
	var rankings []Ranking
	for _, key := range c.Order {
		m := c.Models[key]
		rankings = append(rankings, Ranking{Key: key, AverageScore: m.AverageOverall(), RunCount: m.RunCount})
	}
	slices.SortStableFunc(rankings, func(a, b Ranking) int {
		switch {
		case a.AverageScore > b.AverageScore:
			return -1
		case a.AverageScore < b.AverageScore:
			return 1
		}
		return 0
	})
	return rankings
}

// TotalCost sums the recorded cost of every model.
func (c *EvaluationCache) TotalCost() float64 {
	total := 0.0
	for _, m := range c.Models {
		total += m.TotalCost
	}
	return total
}

// normalize repairs a decoded cache: a missing map is allocated, and keys that
// are absent from Order (files written by hand or by older versions) are
// appended in sorted order.
func (c *EvaluationCache) normalize() {
	if c.Models == nil {
		c.Models = map[string]*CachedModelResult{}
	}
	for key, m := range c.Models {
		if m == nil {
			delete(c.Models, key)
		}
	}

	seen := map[string]bool{}
	order := c.Order[:0]
	for _, key := range c.Order {
		if _, ok := c.Models[key]; ok && !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}
	c.Order = order

	var missing []string
	for key := range c.Models {
		if !seen[key] {
			missing = append(missing, key)
		}
	}
	slices.Sort(missing)
	c.Order = append(c.Order, missing...)
}
