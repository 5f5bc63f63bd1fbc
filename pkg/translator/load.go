package translator

import (
	"fmt"
	"os"
	"path/filepath"

	"hackvm/pkg/utils"
)

// SourceExt is the extension of VM source files.
const SourceExt = ".vm"

// LoadUnits reads a single .vm file, or every .vm file directly inside a
// directory in name order. isDir reports which of the two path was.
func LoadUnits(path string) (units []Unit, isDir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}

	var paths []string
	if info.IsDir() {
		isDir = true
		paths, err = utils.ListSources(path, SourceExt)
		if err != nil {
			return nil, true, err
		}
		if len(paths) == 0 {
			return nil, true, fmt.Errorf("%s: %w", path, ErrNoSources)
		}
	} else {
		if filepath.Ext(path) != SourceExt {
			return nil, false, fmt.Errorf("%s: %w", path, ErrNotVM)
		}
		paths = []string{path}
	}

	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, isDir, err
		}
		units = append(units, Unit{Name: utils.Stem(p), Source: string(src)})
	}
	return units, isDir, nil
}
