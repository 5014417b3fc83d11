package rules

import "testing"

func TestNormalizeOmega(t *testing.T) {
	lex := defaultLexicon(t)

	tests := []struct {
		input []string
		want  []string
	}{
		{[]string{"omega 3"}, []string{"omega 3"}},
		{[]string{"omega3"}, []string{"omega 3"}},
		{[]string{"omega-3"}, []string{"omega 3"}},
		{[]string{"omega 3 6 9", "vitamin c"}, []string{"omega 3", "omega 6", "omega 9", "vitamin c"}},
		{[]string{"omega iii"}, []string{"omega 3"}},
		{[]string{"ω-6"}, []string{"omega 6"}},
		// Not an omega form: untouched.
		{[]string{"omega"}, []string{"omega"}},
		{[]string{"omeprazole"}, []string{"omeprazole"}},
	}
	for _, tt := range tests {
		got := NormalizeOmega(lex, tt.input)
		if !equalTokens(got, tt.want) {
			t.Errorf("NormalizeOmega(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
