package orchestration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FindReferences lists the reference templates (*.json) directly inside dir,
// sorted by name. A missing directory yields no references.
func FindReferences(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading reference directory: %w", err)
	}

	var refs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		refs = append(refs, filepath.Join(dir, entry.Name()))
	}
	return refs, nil
}

// FindCandidates walks outputDir for model outputs produced from the reference
// named refStem: JSON files whose name contains the stem. Reference copies,
// caches and earlier evaluation reports are skipped.
func FindCandidates(outputDir, refStem string) ([]string, error) {
	var candidates []string

	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == outputDir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if isCandidate(path, refStem) {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s for candidates: %w", outputDir, err)
	}

	slices.Sort(candidates)
	return slices.Compact(candidates), nil
}

func isCandidate(path, refStem string) bool {
	if strings.Contains(filepath.ToSlash(path), "source_of_truth") {
		return false
	}

	name := filepath.Base(path)
	if strings.HasPrefix(name, "cache_") || strings.HasPrefix(name, "evaluation") {
		return false
	}
	return strings.Contains(name, refStem)
}
