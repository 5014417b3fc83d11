package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/datadose/pkg/lexicon"
)

func TestEngine_Default(t *testing.T) {
	reg := lexicon.NewRegistry("")
	e := NewEngine(reg, Options{})
	if _, err := e.Pipeline(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Pipeline before load: %v, want ErrNotLoaded", err)
	}
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := e.Pipeline()
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if p.Lexicon() != reg.Current() {
		t.Error("pipeline not bound to the current lexicon")
	}
}

// copyDefault writes the embedded tables to a directory so a test can break them.
func copyDefault(t *testing.T) string {
	t.Helper()
	src := filepath.Join("..", "lexicon", "default")
	dst := t.TempDir()
	entries, err := os.ReadDir(src)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dst
}

func TestEngine_RejectsRegressingReload(t *testing.T) {
	dir := copyDefault(t)
	reg := lexicon.NewRegistry(dir)
	e := NewEngine(reg, Options{})
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := reg.Current()

	// Dropping the spelling table breaks the "digoxine" self-test sample.
	os.WriteFile(filepath.Join(dir, "spelling.csv"), []byte("misspelling,correction\n"), 0o644)
	err := e.Reload()
	if !errors.Is(err, ErrSelfTestFailed) {
		t.Fatalf("Reload error = %v, want ErrSelfTestFailed", err)
	}
	if reg.Current() != before {
		t.Error("regressing tables replaced the active lexicon")
	}
}

func TestEngine_KeepsPipelineUntilSwap(t *testing.T) {
	reg := lexicon.NewRegistry("")
	e := NewEngine(reg, Options{})
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	first, err := e.Pipeline()
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}

	// A lexicon that passed the gate but is not installed yet must not
	// displace the pipeline serving the current one.
	next, err := lexicon.Default()
	if err != nil {
		t.Fatalf("lexicon.Default: %v", err)
	}
	if err := e.validate(next); err != nil {
		t.Fatalf("validate: %v", err)
	}
	again, err := e.Pipeline()
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if again != first {
		t.Error("pipeline rebuilt before the registry swapped lexicons")
	}

	if err := e.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	pending := e.validated
	swapped, err := e.Pipeline()
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if swapped.Lexicon() != reg.Current() || swapped == first {
		t.Error("pipeline not rebound after reload")
	}
	if swapped != pending {
		t.Error("gated pipeline not reused after reload")
	}
}
