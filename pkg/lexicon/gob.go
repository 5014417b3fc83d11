// CLAUDE:SUMMARY Gob snapshot of a lexicon's mapping tables, preferred over the CSV files when present.
package lexicon

import (
	"encoding/gob"
	"fmt"
	"io/fs"
	"os"
)

const snapshotFile = "tables.gob"

// loadSnapshot decodes the mapping tables from a gob file inside fsys.
func (l *Lexicon) loadSnapshot(fsys fs.FS, p string) error {
	f, err := fsys.Open(p)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&l.mappings); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return nil
}

// SaveSnapshot writes the mapping tables of l to a gob file at path.
func SaveSnapshot(l *Lexicon, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(l.mappings); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}
