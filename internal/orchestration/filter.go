package orchestration

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FilterCandidates returns the subset of candidate paths whose file name or
// stem matches at least one of the given glob patterns. An empty patterns slice
// returns all candidates unchanged.
func FilterCandidates(paths []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return paths, nil
	}

	var matched []string
	for _, p := range paths {
		ok, err := matchesAny(p, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// matchesAny reports whether a candidate's file name or stem matches any pattern.
func matchesAny(path string, patterns []string) (bool, error) {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	for _, p := range patterns {
		nameMatch, err := filepath.Match(p, name)
		if err != nil {
			return false, fmt.Errorf("invalid candidate filter pattern %q: %w", p, err)
		}
		if nameMatch {
			return true, nil
		}
		stemMatch, err := filepath.Match(p, stem)
		if err != nil {
			return false, fmt.Errorf("invalid candidate filter pattern %q: %w", p, err)
		}
		if stemMatch {
			return true, nil
		}
	}
	return false, nil
}
