package export

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

// DefaultFilename names the downloadable view.
const DefaultFilename = "filtered_data.csv"

// Formatter writes a table in one output format.
type Formatter interface {
	Name() string
	Extension() string
	ContentType() string
	Format(t *dataset.Table, w io.Writer) error
}

var registry = map[string]Formatter{}

// Register adds f under its name, replacing any previous entry.
func Register(f Formatter) {
	registry[strings.ToLower(f.Name())] = f
}

// Lookup returns the formatter registered as name.
func Lookup(name string) (Formatter, error) {
	if f, ok := registry[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unknown export format %q (available: %s)", name, strings.Join(Names(), ", "))
}

// ForPath picks a formatter from the file extension; unknown extensions fall back to csv.
func ForPath(path string) Formatter {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range registry {
		if f.Extension() != "" && f.Extension() == ext {
			return f
		}
	}
	return registry["csv"]
}

// Names lists registered formats in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func init() {
	Register(Delimited{name: "csv", delim: ',', ext: ".csv", mime: "text/csv"})
	Register(Delimited{name: "tsv", delim: '\t', ext: ".tsv", mime: "text/tab-separated-values"})
	Register(JSON{})
	Register(Parquet{})
	Register(Pretty{})
}
