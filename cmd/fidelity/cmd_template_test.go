package main

import (
	"path/filepath"
	"testing"

	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scrambledJSON = `{
  "_metadata": {"provider": "google", "model_id": "gemini-2.5-pro"},
  "id": 7,
  "name": "Move-in",
  "versions": [{
    "version_id": 1,
    "structure": {
      "name": "root",
      "sections": [
        {"name": "Kitchen", "fields": [
          {"id": 40, "name": "Sink", "rating_type": "RATING_TYPE_RADIO", "options": ["Pass", "Fail"]},
          {"id": 7, "name": "Stove", "rating_type": "RATING_TYPE_CHECKBOX"}
        ]},
        {"name": "Bathroom", "fields": [
          {"id": 7, "name": "Drain", "rating_type": "RATING_TYPE_SELECT"}
        ]}
      ]
    }
  }]
}`

func fieldIDs(t *testing.T, path string) []int {
	t.Helper()
	doc, err := document.LoadReference(path)
	require.NoError(t, err)

	var ids []int
	for _, g := range document.Flatten(doc.Template.Root()) {
		for _, f := range g.Fields {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func TestRenumberCommand_InPlace(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gemini.json", scrambledJSON)

	out, err := executeCommand(t, "renumber", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Renumbered 3 field(s)")

	assert.Equal(t, []int{1, 2, 3}, fieldIDs(t, path))
	assert.True(t, validation.ValidateFile(path).IsValid)

	doc, err := document.LoadCandidate(path)
	require.NoError(t, err)
	require.NotNil(t, doc.Metadata)
	assert.Equal(t, "gemini-2.5-pro", doc.Metadata.ModelID)
}

func TestRenumberCommand_Output(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gemini.json", scrambledJSON)
	dest := filepath.Join(dir, "fixed", "gemini.json")

	_, err := executeCommand(t, "renumber", path, "-o", dest, "--start", "100")
	require.NoError(t, err)

	assert.Equal(t, []int{100, 101, 102}, fieldIDs(t, dest))
	assert.Equal(t, []int{40, 7, 7}, fieldIDs(t, path))
}

func TestRenumberCommand_RefusesUndecodableNodes(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", `{"id": 1, "name": "x", "versions": [{"version_id": 1,
		"structure": {"name": "root", "fields": [{"id": 1, "name": "Sink"}]}}]}`)

	_, err := executeCommand(t, "renumber", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not decode cleanly")
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "part1.json", `{"id": 7, "name": "Move-in", "versions": [{"version_id": 1,
		"structure": {"name": "root", "display_type": "SECTION_DISPLAY_TYPE_TAB", "sections": [
			{"name": "Kitchen", "fields": [{"id": 1, "name": "Sink", "rating_type": "RATING_TYPE_RADIO"}]}]}}]}`)
	second := writeFile(t, dir, "part2.json", `{"id": 0, "name": "", "versions": [{"version_id": 1,
		"structure": {"name": "root", "sections": [
			{"name": "Kitchen", "fields": [{"id": 1, "name": "Stove", "rating_type": "RATING_TYPE_CHECKBOX"}]},
			{"name": "Bathroom", "fields": [{"id": 1, "name": "Drain", "rating_type": "RATING_TYPE_SELECT"}]}]}}]}`)
	dest := filepath.Join(dir, "merged.json")

	out, err := executeCommand(t, "merge", first, second, "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Merged 2 part(s)")
	assert.Contains(t, out, "3 section(s), 3 field(s)")

	doc, err := document.LoadReference(dest)
	require.NoError(t, err)
	assert.Equal(t, "Move-in", doc.Template.Name)

	root := doc.Template.Root()
	require.Len(t, root.Sections, 2)
	assert.Equal(t, "Kitchen", root.Sections[0].Name)
	require.Len(t, root.Sections[0].Fields, 2)
	assert.Equal(t, "Stove", root.Sections[0].Fields[1].Name)
	assert.Equal(t, []int{1, 2, 3}, fieldIDs(t, dest))
}

func TestMergeCommand_RequiresOutput(t *testing.T) {
	_, err := executeCommand(t, "merge", "a.json", "b.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output is required")
}
