package lexicon

import (
	"embed"
	"os"
)

//go:embed default
var defaultFS embed.FS

// Default loads the lexicon compiled into the binary.
func Default() (*Lexicon, error) {
	return LoadFS(defaultFS, "default")
}

// LoadDir loads a lexicon from a directory on disk.
func LoadDir(dir string) (*Lexicon, error) {
	return LoadFS(os.DirFS(dir), ".")
}
