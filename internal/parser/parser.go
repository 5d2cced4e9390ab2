package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// Options controls how a file is read into a table.
type Options struct {
	// Delimiter for delimited text. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	Infer     dataset.InferOptions
	// XLSX sheet selection: by name, else by 1-based index (default 1).
	SheetName  string
	SheetIndex int
}

// Loader reads one file format into a table.
type Loader interface {
	CanParse(filename string) bool
	Load(path string, opt Options) (*dataset.Table, error)
}

var registry []Loader

// Register adds a loader to the registry. Later registrations are tried last.
func Register(l Loader) {
	registry = append(registry, l)
}

// Load reads path into a table using the first loader that accepts the
// filename, falling back to delimited text. Any failure is a *LoadError.
func Load(path string, opt Options) (*dataset.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Reason: FileNotFound, Err: err}
		}
		return nil, &LoadError{Path: path, Reason: Malformed, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Reason: Malformed, Err: fmt.Errorf("%s is a directory", filepath.Base(path))}
	}
	var l Loader = csvLoader{}
	for _, r := range registry {
		if r.CanParse(path) {
			l = r
			break
		}
	}
	t, err := l.Load(path, opt)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, le
		}
		return nil, &LoadError{Path: path, Reason: Malformed, Err: err}
	}
	return t, nil
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
