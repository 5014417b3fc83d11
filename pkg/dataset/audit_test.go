package dataset

import (
	"testing"

	"github.com/hazyhaar/datadose/pkg/lexicon"
	"github.com/hazyhaar/datadose/pkg/pipeline"
)

func TestAudit(t *testing.T) {
	lex, err := lexicon.Default()
	if err != nil {
		t.Fatal(err)
	}
	records := []pipeline.RawRecord{
		{Ingredient: "__ING0024__mins + __ING0035__2 + copper"},
		{Ingredient: "__ING0035__2 + dandelion"},
		{Ingredient: "sp__ING0055__olactone"},
		{Ingredient: "paracetamol"},
	}
	rep := Audit(lex, records)

	if rep.Rows != 4 || rep.RowsWithPlaceholders != 3 {
		t.Errorf("rows = %d/%d, want 3/4", rep.RowsWithPlaceholders, rep.Rows)
	}
	if len(rep.Codes) != 3 {
		t.Fatalf("codes = %+v", rep.Codes)
	}
	top := rep.Codes[0]
	if top.Code != "0035" || top.Count != 2 || top.Mapped {
		t.Errorf("top code = %+v, want unmapped 0035 x2", top)
	}
	if len(top.Examples) != 2 {
		t.Errorf("examples = %q", top.Examples)
	}
	if rep.Codes[1].Code != "0024" || !rep.Codes[1].Mapped || rep.Codes[1].Value != "vita" {
		t.Errorf("second code = %+v", rep.Codes[1])
	}
}
