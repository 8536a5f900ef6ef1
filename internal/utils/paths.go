package utils

import "path/filepath"

// Anchor rewrites each relative path in place so it is rooted at baseDir.
// Absolute and empty paths are left alone.
func Anchor(baseDir string, paths ...*string) {
	for _, p := range paths {
		if p == nil || *p == "" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(baseDir, *p)
	}
}
