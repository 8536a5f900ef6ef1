package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spboyer/fidelity/internal/metrics"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	require.Equal(t, "cache_source_of_truth.json", FileName("templates/source_of_truth.json"))
	require.Equal(t, "cache_inspection.v2.json", FileName("inspection.v2.json"))
	require.Equal(t, "cache_plain.json", FileName("plain"))
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "results")
	store := NewFileStore(dir)

	c, status, err := store.Load(ctx, "refs/kitchen.json")
	require.NoError(t, err)
	require.Equal(t, StatusCreated, status)
	require.Equal(t, "refs/kitchen.json", c.SourceFile)

	c.AddEvaluation(result("openai", "b", 0.4, "t1"))
	c.AddEvaluation(result("google", "a", 0.4, "t2"))
	require.NoError(t, store.Save(ctx, c))
	require.FileExists(t, filepath.Join(dir, "cache_kitchen.json"))

	loaded, status, err := store.Load(ctx, "refs/kitchen.json")
	require.NoError(t, err)
	require.Equal(t, StatusLoaded, status)
	require.Equal(t, c.Models, loaded.Models)

	// the tie survives the round trip in first-seen order
	rankings := loaded.Rankings()
	require.Equal(t, "openai:b", rankings[0].Key)
	require.Equal(t, "google:a", rankings[1].Key)
}

func TestFileStore_CorruptFileIsRecovered(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)

	path := store.Path("ref.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	c, status, err := store.Load(ctx, "ref.json")
	require.NoError(t, err)
	require.Equal(t, StatusRecovered, status)
	require.Empty(t, c.Models)

	// load leaves the corrupt file alone
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{not json", string(data))
}

func TestFileStore_FileWithoutOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)

	raw := map[string]any{
		"source_file":  "ref.json",
		"last_updated": "2026-01-01T00:00:00",
		"models": map[string]any{
			"openai:gpt-4o": map[string]any{
				"model_id": "gpt-4o", "provider": "openai", "run_count": 2, "total_overall_score": 1.5,
			},
		},
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path("ref.json"), data, 0644))

	c, status, err := store.Load(ctx, "ref.json")
	require.NoError(t, err)
	require.Equal(t, StatusLoaded, status)
	require.Equal(t, []string{"openai:gpt-4o"}, c.Order)
	require.Equal(t, 0.75, c.Rankings()[0].AverageScore)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	batch := []models.EvaluationResult{
		*result("openai", "gpt-4o", 0.8, "t1"),
		*result("anthropic", "claude", 0.9, "t1"),
	}
	_, err := Update(ctx, store, "ref.json", batch)
	require.NoError(t, err)

	c, err := Update(ctx, store, "ref.json", []models.EvaluationResult{*result("openai", "gpt-4o", 0.6, "t2")})
	require.NoError(t, err)
	require.Equal(t, 2, c.Models["openai:gpt-4o"].RunCount)
	require.Equal(t, 0.7, c.Models["openai:gpt-4o"].AverageScores().OverallScore)

	reloaded, _, err := store.Load(ctx, "ref.json")
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Models["openai:gpt-4o"].RunCount)
	require.Equal(t, "anthropic:claude", reloaded.Rankings()[0].Key)
}

func TestSummarize(t *testing.T) {
	c := New("ref.json")
	r := result("openai", "gpt-4o", 0.8, "t1")
	r.Usage.Cost = 0.5
	c.AddEvaluation(r)
	c.AddEvaluation(result("openai", "gpt-4o", 0.6, "t2"))
	c.AddEvaluation(result("google", "gemini", 0.9, "t1"))

	s := Summarize(c)
	require.Equal(t, 2, s.ModelCount)
	require.Equal(t, 0.5, s.TotalCost)
	require.Len(t, s.Rows, 2)

	best, ok := s.Best()
	require.True(t, ok)
	require.Equal(t, "google:gemini", best.Key)
	require.Equal(t, 1, best.Rank)

	second := s.Rows[1]
	require.Equal(t, 2, second.Rank)
	require.InDelta(t, 0.7, second.AverageScore, 1e-9)
	require.Equal(t, 0.25, second.AverageCost)
	require.Equal(t, 0.6, second.Recent.Min)
	require.Equal(t, 0.8, second.Recent.Max)
	require.InDelta(t, 0.1, second.Recent.StdDev, 1e-9)
	require.Equal(t, metrics.DefaultResamples, second.Confidence.Resamples)
	require.GreaterOrEqual(t, second.Confidence.Lower, 0.6)
	require.LessOrEqual(t, second.Confidence.Upper, 0.8)

	// a single run gives no interval to compare
	require.Empty(t, s.Contenders())

	_, ok = Summarize(New("empty.json")).Best()
	require.False(t, ok)
}

func TestSummary_Contenders(t *testing.T) {
	c := New("ref.json")
	for _, score := range []float64{0.9, 0.7, 0.8} {
		c.AddEvaluation(result("google", "gemini", score, "t"))
	}
	for _, score := range []float64{0.75, 0.85, 0.7} {
		c.AddEvaluation(result("openai", "gpt-4o", score, "t"))
	}
	for _, score := range []float64{0.2, 0.25, 0.3} {
		c.AddEvaluation(result("deepseek", "chat", score, "t"))
	}

	contenders := Summarize(c).Contenders()
	require.Len(t, contenders, 1)
	require.Equal(t, "openai:gpt-4o", contenders[0].Key)
}
