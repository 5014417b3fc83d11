package pipeline

import "github.com/hazyhaar/datadose/pkg/rules"

// RawRecord is one input row. Fields carries the passthrough columns
// unchanged; Columns keeps their original order.
type RawRecord struct {
	Ingredient string            `json:"ingredient"`
	Fields     map[string]string `json:"fields,omitempty"`
	Columns    []string          `json:"-"`
}

// Step is the state of a row after one stage.
type Step struct {
	Stage  string        `json:"stage"`
	Text   string        `json:"text"`
	Tokens []string      `json:"tokens"`
	Flags  rules.FlagSet `json:"flags"`
}

// Working is the mutable per-row state threaded through the stages.
type Working struct {
	Text    string        `json:"text"`
	Tokens  []string      `json:"tokens"`
	Flags   rules.FlagSet `json:"flags"`
	Unknown []string      `json:"unknown_tokens,omitempty"`
	Trace   []Step        `json:"trace,omitempty"`
}

// Normalized is an admitted output row.
type Normalized struct {
	GraphNodeIngredient string            `json:"Graph_Node_Ingredient"`
	IngredientCount     int               `json:"ingredient_count"`
	IsCombination       bool              `json:"is_combination"`
	ComboType           rules.ComboType   `json:"combo_type"`
	Fields              map[string]string `json:"fields,omitempty"`
	Columns             []string          `json:"-"`
}

// Result is the outcome of one row: Normalized is nil when the row was dropped.
type Result struct {
	Index      int           `json:"index"`
	Input      string        `json:"input"`
	Admitted   bool          `json:"admitted"`
	Flags      rules.FlagSet `json:"flags"`
	Unknown    []string      `json:"unknown_tokens,omitempty"`
	Normalized *Normalized   `json:"normalized,omitempty"`
	Trace      []Step        `json:"trace,omitempty"`
}
