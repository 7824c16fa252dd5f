package utils

import (
	"os"
	"path/filepath"
)

// SearchFileUpward looks for a regular file named fileName
// in dir and its ancestors, nearest first.
//
// It returns the path of the file found, and whether found or not.
func SearchFileUpward(dir string, fileName string) (string, bool) {
	for {
		candidate := filepath.Join(dir, fileName)
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
