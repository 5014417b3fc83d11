package lexicon

import (
	"path/filepath"
	"testing"
)

func TestSnapshotPreferred(t *testing.T) {
	dir := writeTestLexicon(t, "wrong;right\ndigoxine;digoxin\n", "utf-8")

	lex, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	// Snapshot a lexicon with different data, LoadDir should prefer it.
	lex.mappings[MappingSpelling] = map[string]string{"olanzapin": "olanzapine"}
	if err := SaveSnapshot(lex, filepath.Join(dir, snapshotFile)); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	again, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir with snapshot: %v", err)
	}
	if !again.IsSpellTarget("olanzapine") {
		t.Error("expected snapshot data")
	}
	if again.IsSpellTarget("digoxin") {
		t.Error("csv data should not be loaded when a snapshot exists")
	}
}
