package rules

import "testing"

func TestStripToken(t *testing.T) {
	lex := defaultLexicon(t)

	tests := []struct {
		input, want string
	}{
		{"collagen7000mg", "collagen"},
		{"paracetamol 500 mg", "paracetamol"},
		{"heparin 5000 iu/ml", "heparin"},
		{"dextrose 5%", "dextrose"},
		{"zinc 2.5 mg", "zinc"},
		{"collagen7000", "collagen"},
		{"magnesium 250", "magnesium"},
		{"iron 5", "iron"},
		{"1000", ""},
		{"150", ""},
		{"500 mg", ""},
		{"omega 3 6 9", "omega 3 6 9"},
		{"vitamin d3", "vitamin d3"},
		{"vitamin k2", "vitamin k2"},
		{"poliovirus type 1", "poliovirus type 1"},
		{"metformin type 2", "metformin"},
		{"vitamin", ""},
		{"water", ""},
		{"selected theraputically active gereinigter honig", ""},
		{"__ing0035__2", "__ing0035__2"},
		{"sodium (chloride)", "sodium chloride"},
	}
	for _, tt := range tests {
		if got := StripToken(lex, tt.input); got != tt.want {
			t.Errorf("StripToken(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripDosage_DropsEmpty(t *testing.T) {
	lex := defaultLexicon(t)
	got := StripDosage(lex, []string{"150", "alpha", "folic acid", "1000 mg", "iron"})
	want := []string{"alpha", "folic acid", "iron"}
	if !equalTokens(got, want) {
		t.Errorf("StripDosage = %q, want %q", got, want)
	}
}
