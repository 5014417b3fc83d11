package rules

import (
	"strings"

	"github.com/hazyhaar/datadose/pkg/lexicon"
)

// IsCosmetic reports whether the row describes a personal-care product:
// enough distinct cosmetic words across its tokens, or tokens made only of
// cosmetic words.
func IsCosmetic(lex *lexicon.Lexicon, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	seen := make(map[string]struct{})
	allCosmetic := true
	for _, tok := range tokens {
		if !cosmeticOnly(lex, tok) {
			allCosmetic = false
		}
		for _, w := range strings.Fields(tok) {
			if lex.IsCosmeticWord(w) {
				seen[w] = struct{}{}
			}
		}
	}
	return allCosmetic || len(seen) >= lex.CosmeticMinTerms()
}

func cosmeticOnly(lex *lexicon.Lexicon, tok string) bool {
	words := strings.Fields(tok)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !lex.IsCosmeticWord(w) {
			return false
		}
	}
	return true
}
