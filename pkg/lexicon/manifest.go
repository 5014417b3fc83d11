// CLAUDE:SUMMARY Manifest YAML schema for a lexicon: mapping tables (CSV), term lists, unit list and named regex patterns.
package lexicon

import (
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

// Manifest describes one lexicon directory: where its tables live and how to read them.
type Manifest struct {
	ID               string        `yaml:"id" json:"id"`
	Version          string        `yaml:"version" json:"version"`
	Source           string        `yaml:"source" json:"source"`
	License          string        `yaml:"license" json:"license,omitempty"`
	Mappings         []MappingSpec `yaml:"mappings" json:"mappings"`
	Terms            Terms         `yaml:"terms" json:"-"`
	Units            []string      `yaml:"units" json:"units"`
	Patterns         []PatternSpec `yaml:"patterns" json:"patterns"`
	CosmeticMinTerms int           `yaml:"cosmetic_min_terms" json:"cosmetic_min_terms"`
}

// MappingSpec points at a key/value CSV table (placeholders, spelling, expansions).
type MappingSpec struct {
	Name     string     `yaml:"name" json:"name"`
	DataFile string     `yaml:"data_file" json:"data_file"`
	Format   FormatSpec `yaml:"format" json:"-"`
}

// PatternSpec is a named regular expression used by the rewrite and flag rules.
type PatternSpec struct {
	Name  string `yaml:"name" json:"name"`
	Regex string `yaml:"regex" json:"regex"`
}

// FormatSpec describes the CSV layout of a mapping table.
type FormatSpec struct {
	Delimiter   string `yaml:"delimiter"`
	Encoding    string `yaml:"encoding"`
	HasHeader   bool   `yaml:"has_header"`
	KeyColumn   string `yaml:"key_column"`
	ValueColumn string `yaml:"value_column"`
	Normalize   string `yaml:"normalize"`
}

// Terms are the flat word lists. Matching against them is exact unless noted.
type Terms struct {
	Keywords       []string `yaml:"keywords"`        // substring match, marks a token as a known ingredient
	Heads          []string `yaml:"heads"`           // implicit separator before these words
	Cosmetic       []string `yaml:"cosmetic"`        // per word
	Vague          []string `yaml:"vague"`           // per token
	Truncated      []string `yaml:"truncated"`       // per token
	ShortValid     []string `yaml:"short_valid"`     // short tokens that are still real names
	VitaminLetters []string `yaml:"vitamin_letters"` // expanded to "vitamin X"
	Noise          []string `yaml:"noise"`           // dropped; phrases of 8+ chars also match as substrings
	TypeContext    []string `yaml:"type_context"`    // keeps "type N" inside a token
}

// Mapping names recognised by the rules.
const (
	MappingPlaceholders = "placeholders"
	MappingSpelling     = "spelling"
	MappingExpansions   = "expansions"
)

// LoadManifest reads and parses manifest.yaml from dir inside fsys.
func LoadManifest(fsys fs.FS, dir string) (*Manifest, error) {
	p := path.Join(dir, "manifest.yaml")
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", p, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", p, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", p)
	}
	if m.CosmeticMinTerms <= 0 {
		m.CosmeticMinTerms = 2
	}
	for i := range m.Mappings {
		if m.Mappings[i].Name == "" {
			return nil, fmt.Errorf("manifest %s: mapping #%d has no name", p, i)
		}
		if m.Mappings[i].DataFile == "" {
			m.Mappings[i].DataFile = m.Mappings[i].Name + ".csv"
		}
	}
	return &m, nil
}
