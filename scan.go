package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// =============================================================================
// File Discovery
// =============================================================================

// jpegExt is the only extension the tool processes.
// Matching is exact and case-sensitive: "photo.JPG" and "photo.jpeg" are ignored.
const jpegExt = ".jpg"

// listJPEGs returns the names (not paths) of the .jpg files directly inside dir.
// Subdirectories are not descended into.
// Names come back sorted, since os.ReadDir sorts by filename.
// Returns an error wrapping ErrNotFound if dir is missing or not a directory.
func listJPEGs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: input directory %s: %v", ErrNotFound, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: input path %s is not a directory", ErrNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == jpegExt {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
