package dataset

import (
	"sort"

	"github.com/hazyhaar/datadose/pkg/lexicon"
	"github.com/hazyhaar/datadose/pkg/pipeline"
	"github.com/hazyhaar/datadose/pkg/rules"
)

// maxAuditExamples bounds the example rows kept per placeholder code.
const maxAuditExamples = 3

// CodeCount is one placeholder code seen in the input.
type CodeCount struct {
	Code     string   `json:"code"`
	Count    int      `json:"count"`
	Mapped   bool     `json:"mapped"`
	Value    string   `json:"value,omitempty"`
	Examples []string `json:"examples"`
}

// AuditReport summarises the corrupted placeholders of a dataset.
type AuditReport struct {
	Rows                 int         `json:"rows"`
	RowsWithPlaceholders int         `json:"rows_with_placeholders"`
	Codes                []CodeCount `json:"codes"`
}

// Audit scans raw ingredient labels for placeholder tokens and reports how
// often each code occurs and whether the lexicon can decode it.
func Audit(lex *lexicon.Lexicon, records []pipeline.RawRecord) AuditReport {
	rep := AuditReport{Rows: len(records)}
	byCode := make(map[string]*CodeCount)
	for _, rec := range records {
		codes := rules.Placeholders(lex, rec.Ingredient)
		if len(codes) == 0 {
			continue
		}
		rep.RowsWithPlaceholders++
		for _, code := range codes {
			cc, ok := byCode[code]
			if !ok {
				cc = &CodeCount{Code: code, Examples: []string{}}
				cc.Value, cc.Mapped = lex.Placeholder(code)
				byCode[code] = cc
			}
			cc.Count++
			if len(cc.Examples) < maxAuditExamples && !contains(cc.Examples, rec.Ingredient) {
				cc.Examples = append(cc.Examples, rec.Ingredient)
			}
		}
	}

	rep.Codes = make([]CodeCount, 0, len(byCode))
	for _, cc := range byCode {
		rep.Codes = append(rep.Codes, *cc)
	}
	sort.Slice(rep.Codes, func(i, j int) bool {
		if rep.Codes[i].Count != rep.Codes[j].Count {
			return rep.Codes[i].Count > rep.Codes[j].Count
		}
		return rep.Codes[i].Code < rep.Codes[j].Code
	})
	return rep
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
