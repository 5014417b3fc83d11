package lexicon

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds the active lexicon and swaps it atomically on reload.
type Registry struct {
	mu  sync.RWMutex
	lex *Lexicon
	dir string

	// Validate, when set, must accept a freshly loaded lexicon before it
	// replaces the active one.
	Validate func(*Lexicon) error
}

// NewRegistry creates a registry reading from dir. An empty dir selects the
// embedded default tables.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

// Load reads the lexicon and makes it current.
func (r *Registry) Load() error {
	var (
		lex *Lexicon
		err error
	)
	if r.dir == "" {
		lex, err = Default()
	} else {
		lex, err = LoadDir(r.dir)
	}
	if err != nil {
		return fmt.Errorf("load lexicon: %w", err)
	}
	if r.Validate != nil {
		if err := r.Validate(lex); err != nil {
			return fmt.Errorf("validate lexicon %s: %w", lex.Manifest.ID, err)
		}
	}

	r.mu.Lock()
	r.lex = lex
	r.mu.Unlock()
	slog.Info("lexicon loaded", "id", lex.Manifest.ID, "version", lex.Manifest.Version, "dir", r.dir)
	return nil
}

// Reload re-reads the tables. On failure the previous lexicon stays active.
func (r *Registry) Reload() error {
	return r.Load()
}

// Current returns the active lexicon, or nil before the first Load.
func (r *Registry) Current() *Lexicon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lex
}

// Stats returns table sizes of the active lexicon.
func (r *Registry) Stats() (Stats, bool) {
	lex := r.Current()
	if lex == nil {
		return Stats{}, false
	}
	return lex.Stats(), true
}
