// CLAUDE:SUMMARY Named regex patterns of a lexicon, compiled once at load; also builds the dosage unit expressions.
package lexicon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Pattern names every lexicon must define.
const (
	PatternPlaceholder        = "placeholder"         // one capture group: the numeric code
	PatternPlaceholderResidue = "placeholder_residue" // unresolved placeholder left in a token
	PatternUnknown            = "unknown"             // short code-like tokens
	PatternTruncated          = "truncated"           // fragment signatures
	PatternOmega              = "omega"               // anchored, one capture group: the number list
	PatternOmegaSpan          = "omega_span"          // unanchored, used to shield omega forms from splitting
)

var requiredPatterns = []string{
	PatternPlaceholder,
	PatternPlaceholderResidue,
	PatternUnknown,
	PatternTruncated,
	PatternOmega,
	PatternOmegaSpan,
}

// compiledPattern is a single named regex.
type compiledPattern struct {
	name string
	re   *regexp.Regexp
}

// patternSet holds compiled patterns for a lexicon.
type patternSet struct {
	patterns []compiledPattern
	byName   map[string]*regexp.Regexp
}

// compilePatterns builds a patternSet from manifest pattern specs.
func compilePatterns(specs []PatternSpec) (*patternSet, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no patterns defined")
	}

	ps := &patternSet{
		patterns: make([]compiledPattern, 0, len(specs)),
		byName:   make(map[string]*regexp.Regexp, len(specs)),
	}
	for _, spec := range specs {
		if _, dup := ps.byName[spec.Name]; dup {
			return nil, fmt.Errorf("pattern %q defined twice", spec.Name)
		}
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", spec.Name, err)
		}
		ps.patterns = append(ps.patterns, compiledPattern{name: spec.Name, re: re})
		ps.byName[spec.Name] = re
	}
	for _, name := range requiredPatterns {
		if _, ok := ps.byName[name]; !ok {
			return nil, fmt.Errorf("missing required pattern %q", name)
		}
	}
	return ps, nil
}

// match tests a term against all patterns. Returns the first matching pattern name.
func (ps *patternSet) match(term string) (string, bool) {
	for _, p := range ps.patterns {
		if p.re.MatchString(term) {
			return p.name, true
		}
	}
	return "", false
}

// unitAlternation quotes the units and orders them longest first so "mcg"
// is tried before "g".
func unitAlternation(units []string) (string, error) {
	if len(units) == 0 {
		return "", fmt.Errorf("no dosage units defined")
	}
	quoted := make([]string, 0, len(units))
	for _, u := range units {
		u = strings.TrimSpace(strings.ToLower(u))
		if u == "" || u == "%" {
			continue
		}
		q := regexp.QuoteMeta(u)
		// "i u" style spellings tolerate any run of spaces.
		q = strings.ReplaceAll(q, " ", `\s*`)
		quoted = append(quoted, q)
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		if len(quoted[i]) != len(quoted[j]) {
			return len(quoted[i]) > len(quoted[j])
		}
		return quoted[i] < quoted[j]
	})
	return "(?:" + strings.Join(quoted, "|") + ")", nil
}

// dosePatterns builds the two unit-driven expressions of the dosage stripper:
// an embedded strength ("500mg", "1000 iu/ml", "5%") and a dose-only token.
func dosePatterns(units []string) (strength, doseOnly *regexp.Regexp, err error) {
	alt, err := unitAlternation(units)
	if err != nil {
		return nil, nil, err
	}
	unit := `(?:` + alt + `(?:\s*/\s*` + alt + `)?\b|%)`
	strength, err = regexp.Compile(`\d+(?:[.,]\d+)?\s*` + unit)
	if err != nil {
		return nil, nil, fmt.Errorf("strength pattern: %w", err)
	}
	doseOnly, err = regexp.Compile(`^[\d\s.,]*\d[\d\s.,]*` + unit + `?\s*$`)
	if err != nil {
		return nil, nil, fmt.Errorf("dose-only pattern: %w", err)
	}
	return strength, doseOnly, nil
}

// wordListPattern builds `\s+(?:w1|w2|...)\b` used for implicit separators.
func wordListPattern(words []string) (*regexp.Regexp, error) {
	if len(words) == 0 {
		return nil, nil
	}
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.Compile(`\s+(?:` + strings.Join(quoted, "|") + `)\b`)
}

// boundaryPattern builds a whole-word matcher for a table key. Word-boundary
// assertions are only added on sides where the key starts or ends with a word
// character, so keys like "vit." still match.
func boundaryPattern(key string) (*regexp.Regexp, error) {
	expr := regexp.QuoteMeta(key)
	if isWordByte(key[0]) {
		expr = `\b` + expr
	}
	if isWordByte(key[len(key)-1]) {
		expr += `\b`
	}
	return regexp.Compile(expr)
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
