package pipeline

import (
	"errors"
	"sync"

	"github.com/hazyhaar/datadose/pkg/lexicon"
)

// ErrNotLoaded is returned before the registry has loaded any lexicon.
var ErrNotLoaded = errors.New("lexicon not loaded")

// Engine serves a pipeline for the registry's current lexicon. A reload
// whose tables fail the self-test is rejected and the old tables stay active.
type Engine struct {
	reg  *lexicon.Registry
	opts Options

	mu  sync.Mutex
	cur *Pipeline
	// validated is the pipeline that passed the gate for a lexicon the
	// registry has not necessarily installed yet.
	validated *Pipeline
}

// NewEngine wires the self-test gate into reg. Call reg.Load afterwards.
func NewEngine(reg *lexicon.Registry, opts Options) *Engine {
	e := &Engine{reg: reg, opts: opts}
	reg.Validate = e.validate
	return e
}

func (e *Engine) validate(lex *lexicon.Lexicon) error {
	p, err := New(lex, e.opts)
	if err != nil {
		return err
	}
	if err := p.SelfTest(); err != nil {
		return err
	}
	e.mu.Lock()
	e.validated = p
	e.mu.Unlock()
	return nil
}

// Pipeline returns the pipeline bound to the current lexicon.
func (e *Engine) Pipeline() (*Pipeline, error) {
	lex := e.reg.Current()
	if lex == nil {
		return nil, ErrNotLoaded
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur != nil && e.cur.lex == lex {
		return e.cur, nil
	}
	if e.validated != nil && e.validated.lex == lex {
		e.cur, e.validated = e.validated, nil
		return e.cur, nil
	}
	p, err := New(lex, e.opts)
	if err != nil {
		return nil, err
	}
	e.cur = p
	return e.cur, nil
}

// Registry returns the underlying lexicon registry.
func (e *Engine) Registry() *lexicon.Registry { return e.reg }

// Reload re-reads the lexicon through the self-test gate.
func (e *Engine) Reload() error { return e.reg.Reload() }
