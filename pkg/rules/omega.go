package rules

import (
	"regexp"

	"github.com/hazyhaar/datadose/pkg/lexicon"
)

var omegaNumbers = regexp.MustCompile(`[\s\-/,]+`)

var romanOmega = map[string]string{"iii": "3", "vi": "6", "ix": "9"}

// NormalizeOmega rewrites omega variants to one "omega N" token per number:
// "omega-3" -> "omega 3", "omega 3 6 9" -> "omega 3", "omega 6", "omega 9".
// Tokens that are not an omega form pass through unchanged.
func NormalizeOmega(lex *lexicon.Lexicon, tokens []string) []string {
	re := lex.Pattern(lexicon.PatternOmega)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		m := re.FindStringSubmatch(tok)
		if len(m) < 2 {
			out = append(out, tok)
			continue
		}
		for _, n := range omegaNumbers.Split(m[1], -1) {
			if n == "" {
				continue
			}
			if arabic, ok := romanOmega[n]; ok {
				n = arabic
			}
			out = append(out, "omega "+n)
		}
	}
	return out
}
