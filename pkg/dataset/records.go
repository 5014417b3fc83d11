package dataset

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hazyhaar/datadose/pkg/pipeline"
)

// Output schema columns appended after the passthrough columns.
const (
	ColGraphNode       = "Graph_Node_Ingredient"
	ColIngredientCount = "ingredient_count"
	ColIsCombination   = "is_combination"
	ColComboType       = "combo_type"
)

// OutputColumns are the fixed schema columns of a cleaned dataset.
var OutputColumns = []string{ColGraphNode, ColIngredientCount, ColIsCombination, ColComboType}

// IngredientColumns are tried in order when no column is configured.
var IngredientColumns = []string{
	"ActiveIngredient", "activeingredient", "active_ingredient",
	"Generic Name", "generic name", "GenericName",
	"Ingredients", "ingredients",
}

// DetectColumn returns the ingredient column of header. A configured name
// wins; otherwise the known names are tried exactly, then case-insensitively.
func DetectColumn(header []string, configured string) (string, error) {
	if configured != "" {
		for _, h := range header {
			if h == configured {
				return h, nil
			}
		}
		return "", fmt.Errorf("column %q not found in header %v", configured, header)
	}
	for _, want := range IngredientColumns {
		for _, h := range header {
			if h == want {
				return h, nil
			}
		}
	}
	for _, want := range IngredientColumns {
		for _, h := range header {
			if strings.EqualFold(h, want) {
				return h, nil
			}
		}
	}
	return "", fmt.Errorf("active ingredient column not found, available columns: %v", header)
}

// ToRecords converts a table into pipeline input. Every column, the
// ingredient column included, is carried through as a passthrough field.
func ToRecords(t *Table, column string) ([]pipeline.RawRecord, error) {
	idx := -1
	for i, c := range t.Columns {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not in table", column)
	}

	records := make([]pipeline.RawRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		fields := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(row) {
				fields[c] = row[i]
			} else {
				fields[c] = ""
			}
		}
		var ing string
		if idx < len(row) {
			ing = row[idx]
		}
		records = append(records, pipeline.RawRecord{
			Ingredient: ing,
			Fields:     fields,
			Columns:    t.Columns,
		})
	}
	return records, nil
}

// FromNormalized builds the output table: passthrough columns in input
// order followed by the schema columns.
func FromNormalized(rows []pipeline.Normalized, passthrough []string) *Table {
	cols := make([]string, 0, len(passthrough)+len(OutputColumns))
	for _, c := range passthrough {
		if !isOutputColumn(c) {
			cols = append(cols, c)
		}
	}
	nPass := len(cols)
	cols = append(cols, OutputColumns...)

	t := &Table{Columns: cols, Rows: make([][]string, 0, len(rows))}
	for _, n := range rows {
		row := make([]string, 0, len(cols))
		for _, c := range cols[:nPass] {
			row = append(row, n.Fields[c])
		}
		row = append(row,
			n.GraphNodeIngredient,
			strconv.Itoa(n.IngredientCount),
			strconv.FormatBool(n.IsCombination),
			string(n.ComboType),
		)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isOutputColumn(c string) bool {
	for _, o := range OutputColumns {
		if c == o {
			return true
		}
	}
	return false
}

// ReadFile reads a dataset, choosing the format from name or, when empty,
// from the file extension.
func ReadFile(path, name string, opts ReadOptions) (*Table, error) {
	f, err := formatFor(path, name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	t, err := f.Read(file, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// WriteFile writes t to path in the named format or the one implied by its extension.
func WriteFile(path, name string, t *Table) error {
	f, err := formatFor(path, name)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := f.Write(file, t); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func formatFor(path, name string) (Format, error) {
	if name != "" {
		return Get(name)
	}
	return ForPath(path)
}
