// CLAUDE:SUMMARY Separator normalizer: rewrites every combination delimiter to " + " and splits the row into tokens (rule R1).
package rules

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/datadose/pkg/lexicon"
)

// Joiner is the canonical combination separator of the output.
const Joiner = " + "

// ratioMark stands in for "/" inside unit ratios such as "iu/ml" while the row is split.
const ratioMark = "∕"

var (
	parenthetical = regexp.MustCompile(`\(([^)]*)\)`)
	separators    = regexp.MustCompile(`\s+(?:and|with)\s+|--|[–—\-/\\,;&+]`)
	omegaPunct    = regexp.MustCompile(`[\s\-/,]+`)
)

// Split canonicalizes the delimiters of text and returns the trimmed,
// non-empty tokens in their original order.
func Split(lex *lexicon.Lexicon, text string) []string {
	// Omega forms use hyphens and commas that are not combination separators.
	text = lex.Pattern(lexicon.PatternOmegaSpan).ReplaceAllStringFunc(text, func(m string) string {
		return omegaPunct.ReplaceAllString(m, " ")
	})
	text = lex.Strength().ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, "/", ratioMark)
	})

	text = parenthetical.ReplaceAllString(text, Joiner+"$1"+Joiner)
	text = insertImplicit(lex.Heads(), text)

	hasVitamin := strings.Contains(text, "vitamin")
	parts := separators.Split(text, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ReplaceAll(p, ratioMark, "/"))
		if p == "" {
			continue
		}
		if hasVitamin && lex.IsVitaminLetter(p) {
			p = "vitamin " + p
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// insertImplicit turns the whitespace before a head word into a joiner when
// the preceding character is a letter or digit ("calcium vitamin d3 zinc").
func insertImplicit(heads *regexp.Regexp, text string) string {
	if heads == nil {
		return text
	}
	matches := heads.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start := m[0]
		if start == 0 || !isAlnum(text[start-1]) {
			continue
		}
		end := start
		for end < len(text) && isSpace(text[end]) {
			end++
		}
		b.WriteString(text[last:start])
		b.WriteString(Joiner)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
