// CLAUDE:SUMMARY Text folding for raw ingredient labels and table keys (accent strip, NFKC, lowercase, HTML entities).
package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer transforms a table key before it is stored.
type Normalizer func(string) string

// transform.Chain keeps state between calls, so each call builds its own chain.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeLowercaseASCII lowercases and strips accents (e.g. Caféine -> cafeine).
func NormalizeLowercaseASCII(s string) string {
	result, _, err := transform.String(foldChain(), strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return result
}

// NormalizeLowercaseUTF8 lowercases but preserves accents.
func NormalizeLowercaseUTF8(s string) string {
	return strings.ToLower(s)
}

// NormalizeNone returns the term unchanged.
func NormalizeNone(s string) string {
	return s
}

// GetNormalizer returns the normalizer for the given mode.
// Default is lowercase_ascii.
func GetNormalizer(mode string) Normalizer {
	switch mode {
	case "lowercase_ascii":
		return NormalizeLowercaseASCII
	case "lowercase_utf8":
		return NormalizeLowercaseUTF8
	case "none":
		return NormalizeNone
	default:
		return NormalizeLowercaseASCII
	}
}

// PrepareText turns a raw ingredient label into the form every rule expects:
// HTML entities decoded, compatibility-folded, accents stripped, lowercase,
// single-spaced and trimmed.
func PrepareText(s string) string {
	s = html.UnescapeString(s)
	s = NormalizeLowercaseASCII(s)
	return strings.Join(strings.Fields(s), " ")
}
