package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/datadose/pkg/rules"
)

// ErrSelfTestFailed means the rules no longer produce the expected output
// for the built-in samples. No data may be processed.
var ErrSelfTestFailed = errors.New("self-test failed")

// SelfTestCase is one built-in sample. An empty Want means the row must be dropped.
type SelfTestCase struct {
	Input string
	Want  string
	// Flags, when set, must all be present on a dropped row.
	Flags []rules.Flag
}

// SelfTestCases are checked before every run.
var SelfTestCases = []SelfTestCase{
	{Input: "paracetamol(acetaminophen)", Want: "acetaminophen + paracetamol"},
	{Input: "cream + hair + smooth + styling", Flags: []rules.Flag{rules.FlagCosmetic}},
	{Input: "adenosine triphosphate+cocarboxylase+nicotinamide+vitamin b12",
		Want: "adenosine triphosphate + cobalamin + cocarboxylase + nicotinamide"},
	{Input: "collagen7000mg", Want: "collagen"},
	{Input: "__ING0035__2", Flags: []rules.Flag{rules.FlagUnknownToken}},
	{Input: "minerals", Flags: []rules.Flag{rules.FlagVague}},
	{Input: "vitamins + xq7", Flags: []rules.Flag{rules.FlagVague, rules.FlagUnknownToken}},

	{Input: "selected theraputically active gereinigter honig"},
	{Input: "biotin + folic acid + iron vitamin c folic acid vitamin thiamine + niacin + pantothenic acid + pyridoxine + riboflavin",
		Want: "biotin + folic acid + iron + niacin + pantothenic acid + pyridoxine + riboflavin + thiamine + vitamin c"},
	{Input: "human normal immunoglobulins", Want: "human normal immunoglobulin"},
	{Input: "iodochlorohydroxyquinoline", Want: "iodochlorohydroxyquinoline"},
	{Input: "dr ey t"},
	{Input: "calcium vitamin d3 vitamin k2 zinc boron copper manganese selenium magnesium",
		Want: "boron + calcium + copper + magnesium + manganese + selenium + vitamin d3 + vitamin k2 + zinc"},
	{Input: "alpha ketoanalogue of amino acids + histidine + lysine + threonine + tryptophan + tyrosine",
		Want: "alpha ketoanalogue of amino acids + histidine + lysine + threonine + tryptophan + tyrosine"},
	{Input: "granulocyte macrofage colony stimulating factor",
		Want: "granulocyte macrophage colony stimulating factor"},
	{Input: "350m + cream + hair + smooth + styling", Flags: []rules.Flag{rules.FlagCosmetic}},
	{Input: "sp__ING0055__olactone", Want: "spironolactone"},
	{Input: "__ING0024__mins", Flags: []rules.Flag{rules.FlagVague}},
	{Input: "omega-3 + vitamin e", Want: "omega 3 + vitamin e"},
	{Input: "omega-3-6-9 + vitamin c", Want: "omega 3 + omega 6 + omega 9 + vitamin c"},
	{Input: "150 + alpha + folic acid + iron", Want: "alpha + folic acid + iron"},
	{Input: "1000 + folic acid + vitamin b12", Want: "cobalamin + folic acid"},
	{Input: "cholorohexidine", Want: "chlorhexidine"},
	{Input: "digoxine", Want: "digoxin"},
	{Input: "panthenoll", Want: "panthenol"},
	{Input: "paracetamol", Want: "paracetamol"},
	{Input: "acetaminophen", Want: "acetaminophen"},
	{Input: "c", Flags: []rules.Flag{rules.FlagTruncated}},
	{Input: "k", Flags: []rules.Flag{rules.FlagTruncated}},
	{Input: "d3", Flags: []rules.Flag{rules.FlagTruncated}},
	{Input: "lorem ipsum dolor sit amet", Flags: []rules.Flag{rules.FlagUnknownToken}},
	{Input: "please see leaflet inside", Flags: []rules.Flag{rules.FlagUnknownToken}},
}

// SelfTestFailure describes one sample that did not produce its expected result.
type SelfTestFailure struct {
	Input string   `json:"input"`
	Want  string   `json:"want"`
	Got   string   `json:"got"`
	Flags []string `json:"flags"`
}

// SelfTestError lists every failing sample. It wraps ErrSelfTestFailed.
type SelfTestError struct {
	Failures []SelfTestFailure
	Total    int
}

func (e *SelfTestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d samples failed", len(e.Failures), e.Total)
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; %q: got %q, want %q", f.Input, f.Got, f.Want)
	}
	return b.String()
}

func (e *SelfTestError) Unwrap() error { return ErrSelfTestFailed }

// SelfTest runs the built-in samples once per pipeline and caches the outcome.
func (p *Pipeline) SelfTest() error {
	p.selfTestOnce.Do(func() {
		p.selfTestErr = p.CheckCases(SelfTestCases)
		if p.selfTestErr != nil {
			p.logger.Error("self-test failed", "lexicon", p.lex.Manifest.ID, "error", p.selfTestErr)
			return
		}
		p.logger.Debug("self-test passed", "lexicon", p.lex.Manifest.ID, "cases", len(SelfTestCases))
	})
	return p.selfTestErr
}

// CheckCases runs the given samples and reports every mismatch.
func (p *Pipeline) CheckCases(cases []SelfTestCase) error {
	var failures []SelfTestFailure
	for _, c := range cases {
		res := p.process(RawRecord{Ingredient: c.Input}, false)
		got := ""
		if res.Admitted {
			got = res.Normalized.GraphNodeIngredient
		}
		ok := got == c.Want
		for _, f := range c.Flags {
			if !res.Flags.Has(f) {
				ok = false
			}
		}
		if !ok {
			failures = append(failures, SelfTestFailure{
				Input: c.Input,
				Want:  c.Want,
				Got:   got,
				Flags: res.Flags.Names(),
			})
		}
	}
	if len(failures) > 0 {
		return &SelfTestError{Failures: failures, Total: len(cases)}
	}
	return nil
}
