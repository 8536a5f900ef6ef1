package orchestration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindReferences(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", "{}")
	writeFile(t, dir, "a.JSON", "{}")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "nested/c.json", "{}")

	refs, err := FindReferences(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.JSON"), filepath.Join(dir, "b.json")}, refs)

	refs, err = FindReferences(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestFindCandidates(t *testing.T) {
	dir := t.TempDir()
	want := []string{
		writeFile(t, dir, "anthropic/claude/move_in.json", "{}"),
		writeFile(t, dir, "openai_move_in.json", "{}"),
	}
	writeFile(t, dir, "source_of_truth/move_in.json", "{}")
	writeFile(t, dir, "cache_move_in.json", "{}")
	writeFile(t, dir, "evaluation_move_in.json", "{}")
	writeFile(t, dir, "openai_move_out.json", "{}")
	writeFile(t, dir, "move_in.txt", "")

	got, err := FindCandidates(dir, "move_in")
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)

	got, err = FindCandidates(filepath.Join(dir, "missing"), "move_in")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterCandidates_NoPatterns(t *testing.T) {
	paths := []string{"out/a.json", "out/b.json"}
	result, err := FilterCandidates(paths, nil)
	require.NoError(t, err)
	assert.Equal(t, paths, result)
}

func TestFilterCandidates(t *testing.T) {
	paths := []string{"out/openai_gpt-4o.json", "out/google_gemini.json", "out/openai_o3.json"}

	result, err := FilterCandidates(paths, []string{"openai_*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"out/openai_gpt-4o.json", "out/openai_o3.json"}, result)

	result, err = FilterCandidates(paths, []string{"google_gemini.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"out/google_gemini.json"}, result)

	_, err = FilterCandidates(paths, []string{"[invalid"})
	assert.Error(t, err)
}
