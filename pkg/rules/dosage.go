package rules

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/datadose/pkg/lexicon"
)

var (
	typeN        = regexp.MustCompile(`\btype\s+(\d+)\b`)
	typeMark     = regexp.MustCompile(`\btype_(\d+)\b`)
	gluedDigits  = regexp.MustCompile(`([a-z]{4,})\d+\b`)
	bareNumber   = regexp.MustCompile(`\b\d{2,}\b`)
	trailingNums = regexp.MustCompile(`([a-z])\s+\d+(?:\s+\d+)*$`)
	nonWord      = regexp.MustCompile(`[^a-z0-9\s_]+`)
)

// StripDosage removes strength and numeric contamination from every token
// and drops tokens that end up empty or are listed as noise.
func StripDosage(lex *lexicon.Lexicon, tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if t := StripToken(lex, tok); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// StripToken cleans a single token. It returns "" when nothing of the token should survive.
func StripToken(lex *lexicon.Lexicon, tok string) string {
	tok = collapseSpaces(tok)
	if tok == "" || isDigits(tok) || lex.DoseOnly().MatchString(tok) {
		return ""
	}

	tok = collapseSpaces(lex.Strength().ReplaceAllString(tok, " "))
	if lex.IsOmega(tok) {
		return tok
	}

	if lex.HasTypeContext(tok) {
		tok = typeN.ReplaceAllString(tok, "type_$1")
	} else {
		tok = typeN.ReplaceAllString(tok, " ")
	}
	tok = gluedDigits.ReplaceAllString(tok, "$1")
	tok = bareNumber.ReplaceAllString(tok, " ")
	tok = trailingNums.ReplaceAllString(tok, "$1")
	tok = nonWord.ReplaceAllString(tok, " ")
	tok = typeMark.ReplaceAllString(tok, "type $1")

	tok = collapseSpaces(tok)
	if tok == "" || isDigits(tok) || lex.IsNoise(tok) {
		return ""
	}
	return tok
}

func isDigits(s string) bool {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
