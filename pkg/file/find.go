package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LargestWithExt returns the path of the largest regular file in dir
// carrying the given extension. The extension match is case-insensitive.
func LargestWithExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var best string
	var bestSize int64 = -1
	for _, entry := range entries {
		if entry.IsDir() || !hasExt(entry.Name(), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			bestSize = info.Size()
			best = filepath.Join(dir, entry.Name())
		}
	}

	if best == "" {
		return "", fmt.Errorf("no %s file found in %s", ext, dir)
	}
	return best, nil
}

// FirstWithExts returns the first file in dir (lexical order) whose
// extension matches any of exts.
func FirstWithExts(dir string, exts ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		for _, ext := range exts {
			if hasExt(name, ext) {
				return filepath.Join(dir, name), nil
			}
		}
	}

	return "", fmt.Errorf("no audio file found in %s", dir)
}

func hasExt(name, ext string) bool {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.EqualFold(filepath.Ext(name), ext)
}
