package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// delimited reads and writes CSV-like files.
type delimited struct {
	name  string
	comma rune
	exts  []string
}

func (d *delimited) Name() string         { return d.name }
func (d *delimited) Extensions() []string { return d.exts }

func (d *delimited) Read(r io.Reader, opts ReadOptions) (*Table, error) {
	if enc := opts.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.Comma = d.comma
	if opts.Delimiter != "" {
		cr.Comma = []rune(opts.Delimiter)[0]
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty input", d.name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", d.name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	t := &Table{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read row %d: %w", d.name, len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func (d *delimited) Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = d.comma
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("%s: write header: %w", d.name, err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("%s: write rows: %w", d.name, err)
	}
	return nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
