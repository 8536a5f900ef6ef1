package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", partialJSON)
	bad := writeFile(t, dir, "bad.json", `{"id": 7, "name": "Move-in", "versions": [{"version_id": 1,
		"structure": {"name": "root", "fields": [{"id": 1, "name": "Sink"}]}}]}`)

	out, err := executeCommand(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, good+": PASSED")

	out, err = executeCommand(t, "validate", good, bad)
	require.Error(t, err)
	var checkErr *CheckFailedError
	require.True(t, errors.As(err, &checkErr))
	assert.Equal(t, "1 of 2 template(s) failed schema validation", checkErr.Message)
	assert.Contains(t, out, bad+": FAILED")
	assert.Contains(t, out, "rating_type")
}

func TestValidateCommand_JSON(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	out, err := executeCommand(t, "validate", missing, "--format", "json")
	require.Error(t, err)

	var results []validateResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, missing, results[0].File)
	assert.False(t, results[0].IsValid)
	assert.Equal(t, "file", results[0].Errors[0].Path)
}
