// Package imports collects the import paths used by the Go sources of a
// module, which is how gomodwatch decides whether a requirement is used.
package imports

import (
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Scan walks the module rooted at dir and returns every distinct import
// path found in its .go files, sorted. Test files are included.
//
// Directories the go command ignores (vendor, testdata, and names starting
// with "." or "_") are skipped, as are nested modules. Files that do not
// parse are skipped as well.
func Scan(dir string) ([]string, error) {
	seen := make(map[string]bool)
	fset := token.NewFileSet()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if skipDir(d.Name()) || isModuleRoot(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") {
			return nil
		}
		for _, p := range fileImports(fset, path) {
			seen[p] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths, nil
}

func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func isModuleRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "go.mod"))
	return err == nil
}

func fileImports(fset *token.FileSet, path string) []string {
	f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil || f == nil {
		return nil
	}
	paths := make([]string, 0, len(f.Imports))
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p == "" || p == "C" {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}
