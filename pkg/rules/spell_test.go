package rules

import "testing"

func TestCorrectSpelling(t *testing.T) {
	lex := defaultLexicon(t)

	tests := []struct {
		input, want string
	}{
		{"cholorohexidine", "chlorhexidine"},
		{"digoxine", "digoxin"},
		{"panthenoll", "panthenol"},
		{"human normal immunoglobulins", "human normal immunoglobulin"},
		{"granulocyte macrofage colony stimulating factor", "granulocyte macrophage colony stimulating factor"},
		{"benzylpenicillin sodiium", "benzylpenicillin sodium"},
		// Valid names are never rewritten into one another.
		{"paracetamol", "paracetamol"},
		{"acetaminophen", "acetaminophen"},
		{"digoxin", "digoxin"},
		// Abbreviation expansion.
		{"nicotinamide+vitamin b12", "nicotinamide+cobalamin"},
		{"b6 + b1", "pyridoxine + thiamine"},
		{"vit. c", "vitamin c"},
		{"vit.c", "vitamin c"},
		{"vit c", "vitamin c"},
		{"vit. b12", "cobalamin"},
		{"b complex", "thiamine + riboflavin + niacin + pantothenic acid + pyridoxine + biotin + folic acid + cobalamin"},
		// Whole words only.
		{"b12x", "b12x"},
		{"vitality", "vitality"},
	}
	for _, tt := range tests {
		if got := CorrectSpelling(lex, tt.input); got != tt.want {
			t.Errorf("CorrectSpelling(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
