package lexicon

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Rewrite is one whole-word replacement rule taken from a mapping table.
type Rewrite struct {
	From string
	To   string
	re   *regexp.Regexp
}

// Apply replaces every whole-word occurrence of From in text.
func (r Rewrite) Apply(text string) string {
	if !strings.Contains(text, r.From) {
		return text
	}
	return r.re.ReplaceAllLiteralString(text, r.To)
}

// Lexicon is the immutable set of reference tables shared by every row.
// It is never mutated after LoadFS returns, so it is safe for concurrent use.
type Lexicon struct {
	Manifest *Manifest

	mappings map[string]map[string]string

	spelling   []Rewrite
	expansions []Rewrite

	keywords       []string
	cosmetic       map[string]struct{}
	vague          map[string]struct{}
	truncated      map[string]struct{}
	shortValid     map[string]struct{}
	vitaminLetters map[string]struct{}
	noise          map[string]struct{}
	noisePhrases   []string
	typeContext    []string
	spellTargets   map[string]struct{}
	decodedValues  map[string]struct{}

	patterns *patternSet
	heads    *regexp.Regexp
	strength *regexp.Regexp
	doseOnly *regexp.Regexp
}

// LoadFS reads manifest.yaml under dir in fsys and loads every table it names.
// A tables.gob snapshot next to the manifest takes priority over the CSV files.
func LoadFS(fsys fs.FS, dir string) (*Lexicon, error) {
	manifest, err := LoadManifest(fsys, dir)
	if err != nil {
		return nil, err
	}

	lex := &Lexicon{
		Manifest: manifest,
		mappings: make(map[string]map[string]string),
	}

	snapPath := path.Join(dir, snapshotFile)
	if _, err := fs.Stat(fsys, snapPath); err == nil {
		if err := lex.loadSnapshot(fsys, snapPath); err != nil {
			return nil, fmt.Errorf("lexicon %s: %w", manifest.ID, err)
		}
	} else {
		for _, ms := range manifest.Mappings {
			m, err := loadMappingCSV(fsys, path.Join(dir, ms.DataFile), ms.Format)
			if err != nil {
				return nil, fmt.Errorf("lexicon %s: mapping %s: %w", manifest.ID, ms.Name, err)
			}
			lex.mappings[ms.Name] = m
		}
	}

	if err := lex.build(); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", manifest.ID, err)
	}
	return lex, nil
}

// build derives the lookup structures from the manifest and raw mappings.
func (l *Lexicon) build() error {
	t := l.Manifest.Terms

	l.keywords = sortedUnique(t.Keywords)
	l.cosmetic = toSet(t.Cosmetic)
	l.vague = toSet(t.Vague)
	l.truncated = toSet(t.Truncated)
	l.shortValid = toSet(t.ShortValid)
	l.vitaminLetters = toSet(t.VitaminLetters)
	l.noise = toSet(t.Noise)
	l.typeContext = sortedUnique(t.TypeContext)
	for n := range l.noise {
		if len(n) >= 8 {
			l.noisePhrases = append(l.noisePhrases, n)
		}
	}
	sort.Strings(l.noisePhrases)

	var err error
	if l.spelling, err = rewritesFrom(l.mappings[MappingSpelling]); err != nil {
		return fmt.Errorf("spelling: %w", err)
	}
	if l.expansions, err = rewritesFrom(l.mappings[MappingExpansions]); err != nil {
		return fmt.Errorf("expansions: %w", err)
	}

	l.spellTargets = make(map[string]struct{})
	for _, to := range l.mappings[MappingSpelling] {
		l.spellTargets[to] = struct{}{}
	}
	l.decodedValues = make(map[string]struct{})
	for _, to := range l.mappings[MappingPlaceholders] {
		if to != "" {
			l.decodedValues[to] = struct{}{}
		}
	}

	if l.patterns, err = compilePatterns(l.Manifest.Patterns); err != nil {
		return err
	}
	// "vitamin" always opens a new ingredient.
	if l.heads, err = wordListPattern(sortedUnique(append([]string{"vitamin"}, t.Heads...))); err != nil {
		return fmt.Errorf("heads: %w", err)
	}
	if l.strength, l.doseOnly, err = dosePatterns(l.Manifest.Units); err != nil {
		return err
	}
	return nil
}

func loadMappingCSV(fsys fs.FS, p string, format FormatSpec) (map[string]string, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	// Transcode non-UTF-8 encodings declared in the manifest.
	var reader io.Reader = f
	if enc := format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if delim := format.Delimiter; delim != "" {
		r.Comma = []rune(delim)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.Comment = '#'
	r.FieldsPerRecord = -1

	var header []string
	if format.HasHeader {
		header, err = r.Read()
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}

	keyIdx, err := columnIndex(header, format.KeyColumn, 0)
	if err != nil {
		return nil, err
	}
	valIdx, err := columnIndex(header, format.ValueColumn, 1)
	if err != nil {
		return nil, err
	}

	normalize := GetNormalizer(format.Normalize)
	out := make(map[string]string)
	var collisions int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if keyIdx >= len(record) {
			continue
		}
		key := normalize(strings.TrimSpace(record[keyIdx]))
		if key == "" {
			continue
		}
		// Trailing spaces in a value are kept so "vit." can expand to "vitamin ".
		var val string
		if valIdx < len(record) {
			val = normalize(strings.TrimLeftFunc(record[valIdx], unicode.IsSpace))
		}
		if _, exists := out[key]; exists {
			collisions++
		}
		out[key] = val
	}

	if collisions > 0 {
		slog.Warn("key collisions after normalization", "file", p, "collisions", collisions)
	}
	return out, nil
}

// columnIndex resolves a named column, falling back to a fixed position when
// the table has no header or no column name is configured.
func columnIndex(header []string, name string, fallback int) (int, error) {
	if name == "" || header == nil {
		return fallback, nil
	}
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", name, header)
}

// rewritesFrom orders mapping keys longest first, then alphabetically, so the
// application order never depends on map iteration.
func rewritesFrom(m map[string]string) ([]Rewrite, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	out := make([]Rewrite, 0, len(keys))
	for _, k := range keys {
		re, err := boundaryPattern(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out = append(out, Rewrite{From: k, To: m[k], re: re})
	}
	return out, nil
}

// --- lookups used by the rules ---

// Placeholder returns the decoded value for a placeholder code such as "0024".
func (l *Lexicon) Placeholder(code string) (string, bool) {
	v, ok := l.mappings[MappingPlaceholders][code]
	return v, ok
}

// Spelling returns the misspelling rewrites in application order.
func (l *Lexicon) Spelling() []Rewrite { return l.spelling }

// Expansions returns the abbreviation rewrites in application order.
func (l *Lexicon) Expansions() []Rewrite { return l.expansions }

// HasKeyword reports whether token contains a known ingredient keyword.
func (l *Lexicon) HasKeyword(token string) bool {
	for _, kw := range l.keywords {
		if strings.Contains(token, kw) {
			return true
		}
	}
	return false
}

// IsCosmeticWord reports whether word is a cosmetic term.
func (l *Lexicon) IsCosmeticWord(word string) bool { return has(l.cosmetic, word) }

// IsVague reports whether token names a category rather than an ingredient.
func (l *Lexicon) IsVague(token string) bool { return has(l.vague, token) }

// IsTruncatedTerm reports whether token is a listed fragment.
func (l *Lexicon) IsTruncatedTerm(token string) bool { return has(l.truncated, token) }

// IsShortValid reports whether token is a short name that is still real.
func (l *Lexicon) IsShortValid(token string) bool { return has(l.shortValid, token) }

// IsVitaminLetter reports whether token is a vitamin letter or code such as "d3".
func (l *Lexicon) IsVitaminLetter(token string) bool { return has(l.vitaminLetters, token) }

// IsSpellTarget reports whether token is the corrected form of a spelling rewrite.
func (l *Lexicon) IsSpellTarget(token string) bool { return has(l.spellTargets, token) }

// IsDecodedValue reports whether token is an ingredient a placeholder decodes to.
func (l *Lexicon) IsDecodedValue(token string) bool { return has(l.decodedValues, token) }

// IsNoise reports whether a token is contamination to drop: an exact noise
// term, or a token containing one of the longer noise phrases.
func (l *Lexicon) IsNoise(token string) bool {
	if has(l.noise, token) {
		return true
	}
	for _, p := range l.noisePhrases {
		if strings.Contains(token, p) {
			return true
		}
	}
	return false
}

// HasTypeContext reports whether "type N" inside token is meaningful
// (vaccine serotypes, diabetes, collagen types).
func (l *Lexicon) HasTypeContext(token string) bool {
	for _, w := range l.typeContext {
		if strings.Contains(token, w) {
			return true
		}
	}
	return false
}

// Pattern returns a compiled pattern by name, or nil.
func (l *Lexicon) Pattern(name string) *regexp.Regexp {
	return l.patterns.byName[name]
}

// IsOmega reports whether token is an omega fatty-acid form.
func (l *Lexicon) IsOmega(token string) bool {
	return l.patterns.byName[PatternOmega].MatchString(token)
}

// Heads matches whitespace before "vitamin" or a known ingredient head word.
func (l *Lexicon) Heads() *regexp.Regexp { return l.heads }

// Strength matches an embedded number+unit such as "500mg" or "1000 iu/ml".
func (l *Lexicon) Strength() *regexp.Regexp { return l.strength }

// DoseOnly matches a token that is nothing but a number with an optional unit.
func (l *Lexicon) DoseOnly() *regexp.Regexp { return l.doseOnly }

// CosmeticMinTerms is the number of distinct cosmetic words that marks a row cosmetic.
func (l *Lexicon) CosmeticMinTerms() int { return l.Manifest.CosmeticMinTerms }

// TermInfo explains how the tables see a single term.
type TermInfo struct {
	Term       string   `json:"term"`
	Normalized string   `json:"normalized"`
	Lists      []string `json:"lists"`
	Pattern    string   `json:"pattern,omitempty"`
	Correction string   `json:"correction,omitempty"`
}

// Explain reports every list and pattern a term belongs to.
func (l *Lexicon) Explain(term string) TermInfo {
	n := PrepareText(term)
	info := TermInfo{Term: term, Normalized: n, Lists: []string{}}

	checks := []struct {
		name string
		ok   bool
	}{
		{"keyword", l.HasKeyword(n)},
		{"cosmetic", l.IsCosmeticWord(n)},
		{"vague", l.IsVague(n)},
		{"truncated", l.IsTruncatedTerm(n)},
		{"short_valid", l.IsShortValid(n)},
		{"vitamin_letter", l.IsVitaminLetter(n)},
		{"noise", l.IsNoise(n)},
		{"spell_target", l.IsSpellTarget(n)},
		{"decoded_value", l.IsDecodedValue(n)},
	}
	for _, c := range checks {
		if c.ok {
			info.Lists = append(info.Lists, c.name)
		}
	}
	if to, ok := l.mappings[MappingSpelling][n]; ok {
		info.Correction = to
	} else if to, ok := l.mappings[MappingExpansions][n]; ok {
		info.Correction = to
	}
	if name, ok := l.patterns.match(n); ok {
		info.Pattern = name
	}
	return info
}

// Stats summarises table sizes.
type Stats struct {
	ID           string `json:"id"`
	Version      string `json:"version"`
	Source       string `json:"source"`
	Placeholders int    `json:"placeholders"`
	Spelling     int    `json:"spelling"`
	Expansions   int    `json:"expansions"`
	Keywords     int    `json:"keywords"`
	Cosmetic     int    `json:"cosmetic"`
	Vague        int    `json:"vague"`
	Truncated    int    `json:"truncated"`
	Noise        int    `json:"noise"`
	Patterns     int    `json:"patterns"`
	Units        int    `json:"units"`
}

// Stats returns the size of every table.
func (l *Lexicon) Stats() Stats {
	return Stats{
		ID:           l.Manifest.ID,
		Version:      l.Manifest.Version,
		Source:       l.Manifest.Source,
		Placeholders: len(l.mappings[MappingPlaceholders]),
		Spelling:     len(l.spelling),
		Expansions:   len(l.expansions),
		Keywords:     len(l.keywords),
		Cosmetic:     len(l.cosmetic),
		Vague:        len(l.vague),
		Truncated:    len(l.truncated),
		Noise:        len(l.noise),
		Patterns:     len(l.patterns.patterns),
		Units:        len(l.Manifest.Units),
	}
}

func toSet(words []string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

func sortedUnique(words []string) []string {
	s := toSet(words)
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func has(s map[string]struct{}, k string) bool {
	_, ok := s[k]
	return ok
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
