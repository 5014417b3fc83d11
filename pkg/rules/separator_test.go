package rules

import "testing"

func TestSplit(t *testing.T) {
	lex := defaultLexicon(t)

	tests := []struct {
		input string
		want  []string
	}{
		{"paracetamol(acetaminophen)", []string{"paracetamol", "acetaminophen"}},
		{"a+b", []string{"a", "b"}},
		{"iron, zinc; copper", []string{"iron", "zinc", "copper"}},
		{"iron / zinc \\ copper", []string{"iron", "zinc", "copper"}},
		{"iron and zinc with copper & boron", []string{"iron", "zinc", "copper", "boron"}},
		{"iron -- zinc – copper", []string{"iron", "zinc", "copper"}},
		{"iron + + zinc", []string{"iron", "zinc"}},
		{"omega-3 + vitamin e", []string{"omega 3", "vitamin e"}},
		{"omega-3-6-9 + vitamin c", []string{"omega 3 6 9", "vitamin c"}},
		{"heparin 5000 iu/ml", []string{"heparin 5000 iu/ml"}},
		{"calcium vitamin d3 vitamin k2 zinc boron",
			[]string{"calcium", "vitamin d3", "vitamin k2", "zinc", "boron"}},
		{"iron vitamin c folic acid vitamin thiamine",
			[]string{"iron", "vitamin c", "folic acid", "vitamin", "thiamine"}},
		// Lone vitamin letters only expand when the row talks about vitamins.
		{"vitamin a + d3 + e", []string{"vitamin a", "vitamin d3", "vitamin e"}},
		{"c + zinc", []string{"c", "zinc"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got := Split(lex, tt.input)
		if !equalTokens(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInsertImplicit_NotAfterJoiner(t *testing.T) {
	lex := defaultLexicon(t)
	got := insertImplicit(lex.Heads(), "folic acid + iron")
	if got != "folic acid + iron" {
		t.Errorf("insertImplicit = %q, want unchanged", got)
	}
}
