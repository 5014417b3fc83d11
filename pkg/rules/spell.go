package rules

import (
	"strings"

	"github.com/hazyhaar/datadose/pkg/lexicon"
)

// CorrectSpelling rewrites known misspellings, then expands abbreviations of
// the same substance (b12 -> cobalamin, vit. -> vitamin). Both tables are
// exact whole-word lookups; nothing outside them is touched.
func CorrectSpelling(lex *lexicon.Lexicon, text string) string {
	text = applyRewrites(lex.Spelling(), text)
	return applyRewrites(lex.Expansions(), text)
}

// applyRewrites runs the ordered rules to a fixed point: after a rule
// changes the text the scan restarts, so "vit. b12" reaches "cobalamin"
// through "vitamin b12".
func applyRewrites(rules []lexicon.Rewrite, text string) string {
	limit := 2*len(rules) + 1
	for pass := 0; pass < limit; pass++ {
		changed := false
		for _, r := range rules {
			if out := r.Apply(text); out != text {
				text = collapseSpaces(out)
				changed = true
				break
			}
		}
		if !changed {
			break
		}
	}
	return text
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
