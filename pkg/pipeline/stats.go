package pipeline

import (
	"crypto/rand"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hazyhaar/datadose/pkg/lexicon"
	"github.com/hazyhaar/datadose/pkg/rules"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new ULID string, monotonic within the process.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Stats aggregates one run for reporting.
type Stats struct {
	RunID           string         `json:"run_id"`
	LexiconID       string         `json:"lexicon_id"`
	LexiconVersion  string         `json:"lexicon_version"`
	Started         time.Time      `json:"started"`
	Finished        time.Time      `json:"finished"`
	Processed       int            `json:"processed"`
	Admitted        int            `json:"admitted"`
	Dropped         int            `json:"dropped"`
	DroppedByFlag   map[string]int `json:"dropped_by_flag"`
	Single          int            `json:"single"`
	Combo           int            `json:"combo"`
	MaxIngredients  int            `json:"max_ingredients"`
	MeanIngredients float64        `json:"mean_ingredients"`
	UnknownTokens   map[string]int `json:"unknown_tokens"`

	ingredients int
}

func newStats(lex *lexicon.Lexicon) *Stats {
	s := &Stats{
		RunID:         NewID(),
		Started:       time.Now().UTC(),
		DroppedByFlag: make(map[string]int),
		UnknownTokens: make(map[string]int),
	}
	if lex != nil {
		s.LexiconID = lex.Manifest.ID
		s.LexiconVersion = lex.Manifest.Version
	}
	return s
}

// NewStats starts an empty run report, for callers that feed results themselves.
func NewStats(lex *lexicon.Lexicon) *Stats { return newStats(lex) }

// Add counts one processed row.
func (s *Stats) Add(r Result) { s.add(r) }

// Finish closes the report.
func (s *Stats) Finish() { s.finish() }

func (s *Stats) add(r Result) {
	s.Processed++
	for _, tok := range r.Unknown {
		s.UnknownTokens[tok]++
	}
	if !r.Admitted {
		s.Dropped++
		// A row dropped for several reasons counts under each of them.
		for _, f := range r.Flags.Flags() {
			s.DroppedByFlag[f.String()]++
		}
		return
	}

	n := r.Normalized
	s.Admitted++
	s.ingredients += n.IngredientCount
	if n.IngredientCount > s.MaxIngredients {
		s.MaxIngredients = n.IngredientCount
	}
	if n.ComboType == rules.ComboCombo {
		s.Combo++
	} else {
		s.Single++
	}
}

func (s *Stats) finish() {
	s.Finished = time.Now().UTC()
	if s.Admitted > 0 {
		s.MeanIngredients = float64(s.ingredients) / float64(s.Admitted)
	}
}

// TokenCount is an unknown token with its number of occurrences.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// TopUnknown returns the n most frequent unknown tokens, ties broken alphabetically.
func (s *Stats) TopUnknown(n int) []TokenCount {
	out := make([]TokenCount, 0, len(s.UnknownTokens))
	for tok, c := range s.UnknownTokens {
		out = append(out, TokenCount{Token: tok, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Token < out[j].Token
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Log writes the run summary.
func (s *Stats) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	var pct float64
	if s.Processed > 0 {
		pct = float64(s.Dropped) * 100 / float64(s.Processed)
	}
	logger.Info("cleaning completed",
		"run_id", s.RunID,
		"lexicon", s.LexiconID,
		"processed", s.Processed,
		"admitted", s.Admitted,
		"dropped", s.Dropped,
		"dropped_pct", pct,
		"single", s.Single,
		"combo", s.Combo,
		"mean_ingredients", s.MeanIngredients,
		"max_ingredients", s.MaxIngredients,
		"duration", s.Finished.Sub(s.Started),
	)
	for _, f := range rules.AllFlags {
		if c := s.DroppedByFlag[f.String()]; c > 0 {
			logger.Info("dropped by flag", "flag", f.String(), "rows", c)
		}
	}
	for _, tc := range s.TopUnknown(20) {
		logger.Debug("unknown token", "token", tc.Token, "count", tc.Count)
	}
}
