package dataset

import (
	"bytes"
	"strings"
	"testing"
)

func TestGetAndForPath(t *testing.T) {
	for _, name := range []string{"csv", "tsv", "xlsx", "jsonl", "CSV"} {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}
	if _, err := Get("parquet"); err == nil {
		t.Error("Get(parquet) should fail")
	}

	tests := []struct {
		path, want string
	}{
		{"drugs.csv", "csv"},
		{"DRUGS.TSV", "tsv"},
		{"out.xlsx", "xlsx"},
		{"rows.ndjson", "jsonl"},
	}
	for _, tt := range tests {
		f, err := ForPath(tt.path)
		if err != nil {
			t.Errorf("ForPath(%q): %v", tt.path, err)
			continue
		}
		if f.Name() != tt.want {
			t.Errorf("ForPath(%q) = %s, want %s", tt.path, f.Name(), tt.want)
		}
	}
	if len(All()) != 4 {
		t.Errorf("All() = %d formats, want 4", len(All()))
	}
}

func TestCSVRead(t *testing.T) {
	f, _ := Get("csv")
	input := "\ufeffid, ActiveIngredient \n1,paracetamol(acetaminophen)\n2,\"iron, folic acid\"\n3\n"
	tbl, err := f.Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Columns) != 2 || tbl.Columns[0] != "id" || tbl.Columns[1] != "ActiveIngredient" {
		t.Errorf("Columns = %q", tbl.Columns)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(tbl.Rows))
	}
	if tbl.Rows[1][1] != "iron, folic acid" {
		t.Errorf("quoted cell = %q", tbl.Rows[1][1])
	}
}

func TestCSVRead_Windows1252(t *testing.T) {
	f, _ := Get("csv")
	input := "name;ingredients\nx;caf\xe9ine\n"
	tbl, err := f.Read(strings.NewReader(input), ReadOptions{Delimiter: ";", Encoding: "windows-1252"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := tbl.Rows[0][1]; got != "caféine" {
		t.Errorf("cell = %q, want caféine", got)
	}
}

func TestCSVRead_Empty(t *testing.T) {
	f, _ := Get("csv")
	if _, err := f.Read(strings.NewReader(""), ReadOptions{}); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestTSVWrite(t *testing.T) {
	f, _ := Get("tsv")
	var buf bytes.Buffer
	err := f.Write(&buf, &Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "x + y"}}})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "a\tb\n1\tx + y\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestJSONL(t *testing.T) {
	f, _ := Get("jsonl")
	input := `{"id": 1, "ingredients": "zinc"}

{"ingredients": "iron", "id": 2, "batch": null}
`
	tbl, err := f.Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []string{"id", "ingredients", "batch"}
	if strings.Join(tbl.Columns, ",") != strings.Join(want, ",") {
		t.Errorf("Columns = %q, want %q", tbl.Columns, want)
	}
	if tbl.Rows[0][0] != "1" || tbl.Rows[1][1] != "iron" || tbl.Rows[1][2] != "" {
		t.Errorf("Rows = %q", tbl.Rows)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf, &Table{Columns: []string{"a"}, Rows: [][]string{{"x<y"}}}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"a\":\"x<y\"}\n" {
		t.Errorf("jsonl output = %q", buf.String())
	}

	if _, err := f.Read(strings.NewReader("{broken\n"), ReadOptions{}); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestXLSXWriteRead(t *testing.T) {
	f, _ := Get("xlsx")
	in := &Table{
		Columns: []string{"id", "Graph_Node_Ingredient", "note"},
		Rows: [][]string{
			{"1", "acetaminophen + paracetamol", "ok"},
			{"2", "collagen", ""},
		},
	}
	var buf bytes.Buffer
	if err := f.Write(&buf, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := f.Read(&buf, ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if strings.Join(out.Columns, ",") != "id,Graph_Node_Ingredient,note" {
		t.Errorf("Columns = %q", out.Columns)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(out.Rows))
	}
	// Trailing empty cells are padded back to the header width.
	if len(out.Rows[1]) != 3 || out.Rows[1][1] != "collagen" {
		t.Errorf("row 2 = %q", out.Rows[1])
	}
}
