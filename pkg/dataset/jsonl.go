package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// jsonlFormat reads one JSON object per line. Columns are the union of keys
// in order of first appearance; the writer emits objects keyed by column.
type jsonlFormat struct{}

func (jsonlFormat) Name() string         { return "jsonl" }
func (jsonlFormat) Extensions() []string { return []string{".jsonl", ".ndjson"} }

func (jsonlFormat) Read(r io.Reader, _ ReadOptions) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	t := &Table{}
	index := make(map[string]int)
	var objects []map[string]any
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil, fmt.Errorf("jsonl: line %d: %w", line, err)
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			if _, ok := index[k]; !ok {
				keys = append(keys, k)
			}
		}
		// Map order is random; new keys of one line are added alphabetically.
		sort.Strings(keys)
		for _, k := range keys {
			index[k] = len(t.Columns)
			t.Columns = append(t.Columns, k)
		}
		objects = append(objects, obj)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: %w", err)
	}

	for _, obj := range objects {
		row := make([]string, len(t.Columns))
		for k, v := range obj {
			row[index[k]] = cellString(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func (jsonlFormat) Write(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, row := range t.Rows {
		obj := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(row) {
				obj[c] = row[i]
			}
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("jsonl: encode: %w", err)
		}
	}
	return bw.Flush()
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
