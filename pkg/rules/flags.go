// CLAUDE:SUMMARY Row flags (COSMETIC, VAGUE, TRUNCATED, UNKNOWN_TOKEN, EMPTY) as an add-only bitset, and the flag detector (rules R6-R8).
package rules

import (
	"encoding/json"
	"strings"

	"github.com/hazyhaar/datadose/pkg/lexicon"
)

// Flag marks a reason to exclude a row.
type Flag uint8

const (
	FlagCosmetic Flag = 1 << iota
	FlagVague
	FlagTruncated
	FlagUnknownToken
	FlagEmpty
)

// AllFlags lists every flag in reporting order.
var AllFlags = []Flag{FlagCosmetic, FlagVague, FlagTruncated, FlagUnknownToken, FlagEmpty}

func (f Flag) String() string {
	switch f {
	case FlagCosmetic:
		return "COSMETIC"
	case FlagVague:
		return "VAGUE"
	case FlagTruncated:
		return "TRUNCATED"
	case FlagUnknownToken:
		return "UNKNOWN_TOKEN"
	case FlagEmpty:
		return "EMPTY"
	default:
		return "UNKNOWN_FLAG"
	}
}

// FlagSet accumulates flags. There is no way to remove one.
type FlagSet struct {
	bits Flag
}

// Add sets f.
func (s *FlagSet) Add(f Flag) { s.bits |= f }

// Merge adds every flag of o.
func (s *FlagSet) Merge(o FlagSet) { s.bits |= o.bits }

// Has reports whether f is set.
func (s FlagSet) Has(f Flag) bool { return s.bits&f != 0 }

// Empty reports whether no flag is set, the condition for admitting a row.
func (s FlagSet) Empty() bool { return s.bits == 0 }

// Flags returns the set flags in reporting order.
func (s FlagSet) Flags() []Flag {
	var out []Flag
	for _, f := range AllFlags {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the flag names in reporting order, never nil.
func (s FlagSet) Names() []string {
	names := []string{}
	for _, f := range s.Flags() {
		names = append(names, f.String())
	}
	return names
}

func (s FlagSet) String() string {
	return strings.Join(s.Names(), ",")
}

func (s FlagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// DetectFlags inspects the final tokens of a row without changing them.
// It returns every flag that applies and the tokens judged unknown.
// A vitamin letter still bare after splitting is a remnant, and a row of
// three or more words without any known ingredient vocabulary is free text:
// all of its tokens count as unknown.
func DetectFlags(lex *lexicon.Lexicon, tokens []string) (FlagSet, []string) {
	var flags FlagSet
	var unknown []string
	if len(tokens) == 0 {
		flags.Add(FlagEmpty)
		return flags, nil
	}

	truncated := lex.Pattern(lexicon.PatternTruncated)
	for _, tok := range tokens {
		if lex.IsVague(tok) {
			flags.Add(FlagVague)
		}
		if lex.IsTruncatedTerm(tok) || truncated.MatchString(tok) || lex.IsVitaminLetter(tok) {
			flags.Add(FlagTruncated)
		}
		if IsUnknown(lex, tok) {
			flags.Add(FlagUnknownToken)
			unknown = append(unknown, tok)
		}
	}
	if len(unknown) == 0 && IsFreeText(lex, tokens) {
		flags.Add(FlagUnknownToken)
		unknown = append(unknown, tokens...)
	}
	return flags, unknown
}

// IsFreeText reports whether tokens hold at least three words and none of
// them carries ingredient vocabulary.
func IsFreeText(lex *lexicon.Lexicon, tokens []string) bool {
	words := 0
	for _, tok := range tokens {
		words += len(strings.Fields(tok))
	}
	if words < 3 {
		return false
	}
	for _, tok := range tokens {
		if recognized(lex, tok) {
			return false
		}
		for _, w := range strings.Fields(tok) {
			if lex.HasKeyword(w) {
				return false
			}
		}
	}
	return true
}

// IsUnknown reports whether tok is an unresolved placeholder, or is absent from
// every reference list and looks like a code fragment rather than a name.
func IsUnknown(lex *lexicon.Lexicon, tok string) bool {
	if lex.Pattern(lexicon.PatternPlaceholderResidue).MatchString(tok) {
		return true
	}
	if recognized(lex, tok) {
		return false
	}
	return lex.Pattern(lexicon.PatternUnknown).MatchString(tok) || len(tok) <= 3
}

func recognized(lex *lexicon.Lexicon, tok string) bool {
	return lex.IsShortValid(tok) ||
		strings.HasPrefix(tok, "vitamin ") ||
		lex.HasKeyword(tok) ||
		lex.IsSpellTarget(tok) ||
		lex.IsDecodedValue(tok) ||
		cosmeticOnly(lex, tok) ||
		lex.IsVague(tok) ||
		lex.IsTruncatedTerm(tok) ||
		lex.IsOmega(tok)
}
