package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// getAbsolutePath checks if a file exists and returns its absolute path.
func getAbsolutePath(filename string) (string, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, fmt.Errorf("error getting absolute path: %v", err)
	}

	_, err = os.Stat(absPath)
	if os.IsNotExist(err) {
		return absPath, fmt.Errorf("file does not exist: %v", absPath)
	} else if err != nil {
		return absPath, fmt.Errorf("error checking file: %v", err)
	}

	return absPath, nil
}

// expandDiaryGlobs resolves the configured diary globs into existing file
// paths, keeping the configured priority order and dropping duplicates.
func expandDiaryGlobs(globs []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	for _, glob := range globs {
		matched, err := filepath.Glob(glob)
		if err != nil {
			return nil, fmt.Errorf("bad diary glob '%s': %w", glob, err)
		}
		for _, file := range matched {
			if _, ok := seen[file]; ok {
				continue
			}
			seen[file] = struct{}{}
			files = append(files, file)
		}
	}
	return files, nil
}
