package rules

import (
	"sort"
	"strings"
)

// ComboType tells single-ingredient rows from combinations.
type ComboType string

const (
	ComboSingle ComboType = "single"
	ComboCombo  ComboType = "combo"
)

// Classification is the deduplicated, ordered token list of one row.
type Classification struct {
	Tokens        []string  `json:"tokens"`
	Joined        string    `json:"joined"`
	Count         int       `json:"count"`
	IsCombination bool      `json:"is_combination"`
	ComboType     ComboType `json:"combo_type"`
}

// Classify removes duplicate tokens within the row, orders the rest
// alphabetically and derives the combination metadata.
func Classify(tokens []string) Classification {
	seen := make(map[string]struct{}, len(tokens))
	uniq := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, t)
	}
	sort.Strings(uniq)

	c := Classification{
		Tokens:        uniq,
		Joined:        strings.Join(uniq, Joiner),
		Count:         len(uniq),
		IsCombination: len(uniq) > 1,
		ComboType:     ComboSingle,
	}
	if c.IsCombination {
		c.ComboType = ComboCombo
	}
	return c
}
