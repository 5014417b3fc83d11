package lexicon

import "testing"

func TestNormalizeLowercaseASCII(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"PARACETAMOL", "paracetamol"},
		{"Caféine", "cafeine"},
		{"Ácido Fólico", "acido folico"},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeLowercaseASCII(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeLowercaseASCII(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGetNormalizer(t *testing.T) {
	if got := GetNormalizer("none")("ABC"); got != "ABC" {
		t.Errorf("none = %q, want ABC", got)
	}
	if got := GetNormalizer("lowercase_utf8")("CAFÉ"); got != "café" {
		t.Errorf("lowercase_utf8 = %q, want café", got)
	}
	if got := GetNormalizer("")("CAFÉ"); got != "cafe" {
		t.Errorf("default = %q, want cafe", got)
	}
}

func TestPrepareText(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"  Paracetamol   (Acetaminophen) ", "paracetamol (acetaminophen)"},
		{"Iron &amp; Folic Acid", "iron & folic acid"},
		{"Vitamin\tB12", "vitamin b12"},
		{"ＶＩＴＡＭＩＮ Ｃ", "vitamin c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PrepareText(tt.input); got != tt.want {
			t.Errorf("PrepareText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
