package utils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ListSources returns the regular files in dir whose extension is ext, sorted
// by name. Subdirectories are not searched.
func ListSources(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath derives the output file for an input: Foo.vm -> Foo<ext>, and a
// directory dir -> dir/<dir><ext>.
func OutputPath(path string, isDir bool, ext string) string {
	if isDir {
		clean := filepath.Clean(path)
		return filepath.Join(clean, filepath.Base(clean)+ext)
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
