package rules

import "testing"

func TestDecode(t *testing.T) {
	lex := defaultLexicon(t)

	tests := []struct {
		input, want string
	}{
		{"sp__ing0055__olactone", "spironolactone"},
		{"__ing0024__mins", "vitamins"},
		{"__ING0055__", "iron"},
		// Unmapped codes stay as they are.
		{"__ing0035__2", "__ing0035__2"},
		{"__ing0035__2 + zinc", "__ing0035__2 + zinc"},
		{"paracetamol", "paracetamol"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Decode(lex, tt.input); got != tt.want {
			t.Errorf("Decode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	lex := defaultLexicon(t)
	got := Placeholders(lex, "__ING0024__mins + __ING0035__2 + iron")
	if !equalTokens(got, []string{"0024", "0035"}) {
		t.Errorf("Placeholders = %v, want [0024 0035]", got)
	}
}
