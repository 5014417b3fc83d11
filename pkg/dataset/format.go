// CLAUDE:SUMMARY Tabular dataset formats (csv, tsv, xlsx, jsonl) behind a small registry keyed by name and file extension.
package dataset

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Table is a dataset held in memory: a header and string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadOptions tune how a format decodes its input.
type ReadOptions struct {
	// Delimiter overrides the field separator of delimited formats.
	Delimiter string
	// Encoding names a non-UTF-8 input charset (e.g. "windows-1252").
	Encoding string
	// Sheet selects an XLSX sheet; empty means the first one.
	Sheet string
}

// Format reads and writes one file format.
type Format interface {
	// Name returns the format identifier used in config and flags (e.g. "csv").
	Name() string
	// Extensions returns the file extensions handled, with the leading dot.
	Extensions() []string
	Read(r io.Reader, opts ReadOptions) (*Table, error)
	Write(w io.Writer, t *Table) error
}

var (
	registryMu sync.RWMutex
	formats    = make(map[string]Format)
)

// Register adds a format to the global registry.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()
	formats[f.Name()] = f
}

// Get returns a registered format by name.
func Get(name string) (Format, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown dataset format: %q", name)
	}
	return f, nil
}

// All returns all registered formats sorted by name.
func All() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Format, 0, len(formats))
	for _, f := range formats {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// ForPath picks the format from a file extension.
func ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range All() {
		for _, e := range f.Extensions() {
			if e == ext {
				return f, nil
			}
		}
	}
	return nil, fmt.Errorf("no dataset format for extension %q", ext)
}

func init() {
	Register(&delimited{name: "csv", comma: ',', exts: []string{".csv", ".txt"}})
	Register(&delimited{name: "tsv", comma: '\t', exts: []string{".tsv", ".tab"}})
	Register(xlsxFormat{})
	Register(jsonlFormat{})
}
