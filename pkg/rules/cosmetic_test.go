package rules

import "testing"

func TestIsCosmetic(t *testing.T) {
	lex := defaultLexicon(t)

	tests := []struct {
		tokens []string
		want   bool
	}{
		{[]string{"cream", "hair", "smooth", "styling"}, true},
		{[]string{"350m", "cream", "hair", "smooth", "styling"}, true},
		{[]string{"shampoo"}, true},
		{[]string{"hair lotion"}, true},
		{[]string{"diclofenac", "gel"}, false},
		{[]string{"paracetamol"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsCosmetic(lex, tt.tokens); got != tt.want {
			t.Errorf("IsCosmetic(%q) = %v, want %v", tt.tokens, got, tt.want)
		}
	}
}
