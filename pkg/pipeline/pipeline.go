// CLAUDE:SUMMARY Pipeline orchestrator: fixed stage order per row, admission on an empty flag set, self-test gate before any run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/datadose/pkg/lexicon"
	"github.com/hazyhaar/datadose/pkg/rules"
)

// Stage names, in execution order.
const (
	StagePrepare  = "prepare"
	StageDecode   = "decode"
	StageSpelling = "spelling"
	StageSplit    = "separators"
	StageDosage   = "dosage"
	StageOmega    = "omega"
	StageCosmetic = "cosmetic"
	StageFlags    = "flags"
)

// ErrNoLexicon is returned by New callers that pass a nil lexicon.
var ErrNoLexicon = errors.New("pipeline: nil lexicon")

type stage struct {
	name  string
	apply func(lex *lexicon.Lexicon, w *Working)
}

// Options configures a Pipeline.
type Options struct {
	Logger *slog.Logger
	// Trace records the row state after every stage in Result.Trace.
	Trace bool
}

// Pipeline applies the normalization rules to rows. It holds one immutable
// lexicon and is safe for concurrent use.
type Pipeline struct {
	lex    *lexicon.Lexicon
	logger *slog.Logger
	trace  bool
	stages []stage

	selfTestOnce sync.Once
	selfTestErr  error
}

// New builds a pipeline over lex.
func New(lex *lexicon.Lexicon, opts Options) (*Pipeline, error) {
	if lex == nil {
		return nil, ErrNoLexicon
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		lex:    lex,
		logger: logger,
		trace:  opts.Trace,
		stages: defaultStages(),
	}, nil
}

// The order is load-bearing: dosage stripping needs the tokens produced by
// the separator stage, and flags are computed on the final tokens.
func defaultStages() []stage {
	return []stage{
		{StagePrepare, func(_ *lexicon.Lexicon, w *Working) {
			w.Text = lexicon.PrepareText(w.Text)
		}},
		{StageDecode, func(lex *lexicon.Lexicon, w *Working) {
			w.Text = rules.Decode(lex, w.Text)
		}},
		{StageSpelling, func(lex *lexicon.Lexicon, w *Working) {
			w.Text = rules.CorrectSpelling(lex, w.Text)
		}},
		{StageSplit, func(lex *lexicon.Lexicon, w *Working) {
			w.Tokens = rules.Split(lex, w.Text)
		}},
		{StageDosage, func(lex *lexicon.Lexicon, w *Working) {
			w.Tokens = rules.StripDosage(lex, w.Tokens)
		}},
		{StageOmega, func(lex *lexicon.Lexicon, w *Working) {
			w.Tokens = rules.NormalizeOmega(lex, w.Tokens)
		}},
		{StageCosmetic, func(lex *lexicon.Lexicon, w *Working) {
			if rules.IsCosmetic(lex, w.Tokens) {
				w.Flags.Add(rules.FlagCosmetic)
			}
		}},
		{StageFlags, func(lex *lexicon.Lexicon, w *Working) {
			flags, unknown := rules.DetectFlags(lex, w.Tokens)
			w.Flags.Merge(flags)
			w.Unknown = unknown
		}},
	}
}

// Lexicon returns the tables this pipeline was built with.
func (p *Pipeline) Lexicon() *lexicon.Lexicon { return p.lex }

// Process runs one row through every stage. It never fails: rows that do
// not pass validation come back with Admitted false and their flags.
func (p *Pipeline) Process(raw RawRecord) Result {
	return p.process(raw, p.trace)
}

// Explain processes a single label and always records the stage trace.
func (p *Pipeline) Explain(text string) Result {
	return p.process(RawRecord{Ingredient: text}, true)
}

func (p *Pipeline) process(raw RawRecord, trace bool) Result {
	w := &Working{Text: raw.Ingredient}
	for _, st := range p.stages {
		st.apply(p.lex, w)
		if trace {
			w.Trace = append(w.Trace, Step{
				Stage:  st.name,
				Text:   w.Text,
				Tokens: append([]string(nil), w.Tokens...),
				Flags:  w.Flags,
			})
		}
	}

	res := Result{
		Input:   raw.Ingredient,
		Flags:   w.Flags,
		Unknown: w.Unknown,
		Trace:   w.Trace,
	}
	if !w.Flags.Empty() {
		return res
	}

	c := rules.Classify(w.Tokens)
	res.Admitted = true
	res.Normalized = &Normalized{
		GraphNodeIngredient: c.Joined,
		IngredientCount:     c.Count,
		IsCombination:       c.IsCombination,
		ComboType:           c.ComboType,
		Fields:              raw.Fields,
		Columns:             raw.Columns,
	}
	return res
}

// Run checks the self-test gate, then processes records in order and
// returns the admitted rows with the run statistics.
func (p *Pipeline) Run(ctx context.Context, records []RawRecord) ([]Normalized, *Stats, error) {
	if err := p.SelfTest(); err != nil {
		return nil, nil, err
	}

	stats := newStats(p.lex)
	out := make([]Normalized, 0, len(records))
	for i, rec := range records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, fmt.Errorf("run cancelled at row %d: %w", i, err)
			}
		}
		res := p.Process(rec)
		res.Index = i
		stats.add(res)
		if res.Admitted {
			out = append(out, *res.Normalized)
		}
	}
	stats.finish()
	return out, stats, nil
}

// RunConcurrent is Run with rows spread over workers. Output order and
// statistics are identical to Run.
func (p *Pipeline) RunConcurrent(ctx context.Context, records []RawRecord, workers int) ([]Normalized, *Stats, error) {
	if workers <= 1 || len(records) < 2 {
		return p.Run(ctx, records)
	}
	if err := p.SelfTest(); err != nil {
		return nil, nil, err
	}

	results := make([]Result, len(records))
	chunk := (len(records) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(records); start += chunk {
		start, end := start, min(start+chunk, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				results[i] = p.Process(records[i])
				results[i].Index = i
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("run cancelled: %w", err)
	}

	stats := newStats(p.lex)
	out := make([]Normalized, 0, len(records))
	for _, res := range results {
		stats.add(res)
		if res.Admitted {
			out = append(out, *res.Normalized)
		}
	}
	stats.finish()
	p.logger.Debug("concurrent run finished", "rows", len(records), "workers", workers)
	return out, stats, nil
}
