package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "none.yaml"), quietLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	def := defaultConfig()
	if cfg.Addr != def.Addr || cfg.Workers != def.Workers || cfg.LexiconDir != "" {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datadose.yaml")
	os.WriteFile(path, []byte(`
addr: ":9000"
lexicon_dir: /etc/datadose/lexicon
workers: 3
log_level: debug
input:
  column: Generic Name
  encoding: windows-1252
  delimiter: ";"
output:
  format: xlsx
store:
  driver: sqlite
  dsn: runs.db
`), 0o644)

	cfg, err := loadConfig(path, quietLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Workers != 3 || cfg.LexiconDir != "/etc/datadose/lexicon" {
		t.Errorf("top-level = %+v", cfg)
	}
	if cfg.Input.Column != "Generic Name" || cfg.Input.Delimiter != ";" || cfg.Input.Encoding != "windows-1252" {
		t.Errorf("input = %+v", cfg.Input)
	}
	if cfg.Output.Format != "xlsx" || cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "runs.db" {
		t.Errorf("output/store = %+v %+v", cfg.Output, cfg.Store)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("workers: [1, 2\n"), 0o644)
	if _, err := loadConfig(path, quietLogger()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyFlags(t *testing.T) {
	fs := newFlagSet("clean")
	fs.Int("workers", 0, "")
	fs.String("column", "", "")
	fs.String("store-driver", "", "")
	if err := fs.Parse([]string{"-workers", "5", "-column", "drug", "-lexicon", "/tmp/lex"}); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Store.Driver = "postgres"
	if err := applyFlags(&cfg, fs); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if cfg.Workers != 5 || cfg.Input.Column != "drug" || cfg.LexiconDir != "/tmp/lex" {
		t.Errorf("cfg = %+v", cfg)
	}
	// Unset flags leave file values alone.
	if cfg.Store.Driver != "postgres" {
		t.Errorf("store driver = %q, want postgres", cfg.Store.Driver)
	}

	bad := newFlagSet("clean")
	bad.Int("workers", 0, "")
	bad.Parse([]string{"-workers", "0"})
	if err := applyFlags(&cfg, bad); err == nil {
		t.Error("expected error for zero workers")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
