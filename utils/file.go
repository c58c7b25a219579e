package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// CollectFiles expands paths into regular files. Directories are read one
// level deep and only entries accepted by keep are returned; explicitly named
// files are always returned. The result is sorted within each directory.
func CollectFiles(paths []string, keep func(name string) bool) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		var dirFiles []string
		for _, entry := range entries {
			if entry.IsDir() || (keep != nil && !keep(entry.Name())) {
				continue
			}
			dirFiles = append(dirFiles, filepath.Join(p, entry.Name()))
		}
		sort.Strings(dirFiles)
		files = append(files, dirFiles...)
	}
	return files, nil
}
