package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

type config struct {
	Addr       string       `yaml:"addr"`
	LexiconDir string       `yaml:"lexicon_dir"` // empty: embedded tables
	Workers    int          `yaml:"workers"`
	LogLevel   string       `yaml:"log_level"`
	Input      inputConfig  `yaml:"input"`
	Output     outputConfig `yaml:"output"`
	Store      storeConfig  `yaml:"store"`
	TLS        tlsConfig    `yaml:"tls"`
}

type inputConfig struct {
	Column    string `yaml:"column"`
	Encoding  string `yaml:"encoding"`
	Delimiter string `yaml:"delimiter"`
	Format    string `yaml:"format"`
	Sheet     string `yaml:"sheet"`
}

type outputConfig struct {
	Format string `yaml:"format"`
}

type storeConfig struct {
	Driver string `yaml:"driver"` // "", "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

type tlsConfig struct {
	Mode string `yaml:"mode"` // off, dev or file
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

func defaultConfig() config {
	return config{
		Addr:     ":8421",
		Workers:  runtime.NumCPU(),
		LogLevel: "info",
		TLS:      tlsConfig{Mode: "off"},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string, logger *slog.Logger) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// newFlagSet declares the flags shared by every subcommand. Flags that
// mirror config keys only override the file when set explicitly.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.String("config", "datadose.yaml", "path to config file")
	fs.String("lexicon", "", "lexicon directory (default: embedded tables)")
	fs.String("log-level", "", "debug, info, warn or error")
	return fs
}

// setup parses args, loads the config and applies explicit flag overrides.
func setup(fs *flag.FlagSet, args []string) (config, *slog.Logger, error) {
	if err := fs.Parse(args); err != nil {
		return config{}, nil, err
	}
	boot := newLogger(flagString(fs, "log-level"))
	cfg, err := loadConfig(flagString(fs, "config"), boot)
	if err != nil {
		return cfg, boot, err
	}
	if err := applyFlags(&cfg, fs); err != nil {
		return cfg, boot, err
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func applyFlags(cfg *config, fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "lexicon":
			cfg.LexiconDir = v
		case "log-level":
			cfg.LogLevel = v
		case "addr":
			cfg.Addr = v
		case "workers":
			n, _ := f.Value.(flag.Getter).Get().(int)
			if n <= 0 {
				err = fmt.Errorf("workers must be positive, got %d", n)
				return
			}
			cfg.Workers = n
		case "column":
			cfg.Input.Column = v
		case "encoding":
			cfg.Input.Encoding = v
		case "delimiter":
			cfg.Input.Delimiter = v
		case "format":
			cfg.Input.Format = v
		case "sheet":
			cfg.Input.Sheet = v
		case "output-format":
			cfg.Output.Format = v
		case "store-driver":
			cfg.Store.Driver = v
		case "store-dsn":
			cfg.Store.DSN = v
		case "tls":
			cfg.TLS.Mode = v
		}
	})
	return err
}

func flagString(fs *flag.FlagSet, name string) string {
	if f := fs.Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
}
