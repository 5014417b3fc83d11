// CLAUDE:SUMMARY Token decoder: resolves corrupted __INGnnnn__ placeholders through the lexicon (rule R0).
package rules

import "github.com/hazyhaar/datadose/pkg/lexicon"

// Decode replaces every placeholder in text with its lexicon value.
// Codes missing from the lexicon are left in place; the flag detector reports them.
func Decode(lex *lexicon.Lexicon, text string) string {
	re := lex.Pattern(lexicon.PatternPlaceholder)
	return re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		if v, ok := lex.Placeholder(sub[1]); ok {
			return v
		}
		return m
	})
}

// Placeholders returns the placeholder codes found in text, in order of appearance.
func Placeholders(lex *lexicon.Lexicon, text string) []string {
	var codes []string
	for _, sub := range lex.Pattern(lexicon.PatternPlaceholder).FindAllStringSubmatch(text, -1) {
		if len(sub) > 1 {
			codes = append(codes, sub[1])
		}
	}
	return codes
}
