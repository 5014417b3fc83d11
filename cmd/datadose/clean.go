// CLAUDE:SUMMARY clean subcommand: resolve input, read, normalize concurrently behind the self-test gate, write, log stats, optionally persist.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/datadose/pkg/dataset"
	"github.com/hazyhaar/datadose/pkg/lexicon"
	"github.com/hazyhaar/datadose/pkg/pipeline"
	"github.com/hazyhaar/datadose/pkg/store"
)

func cmdClean(args []string) error {
	fs := newFlagSet("clean")
	fs.String("column", "", "ingredient column (default: auto-detect)")
	fs.String("encoding", "", "input charset, e.g. windows-1252")
	fs.String("delimiter", "", "input field delimiter")
	fs.String("format", "", "input format: csv, tsv, xlsx, jsonl (default: from extension)")
	fs.String("sheet", "", "xlsx sheet (default: first)")
	fs.String("output-format", "", "output format (default: from extension)")
	fs.Int("workers", 0, "parallel workers")
	fs.String("store-driver", "", "save the run to a database: sqlite or postgres")
	fs.String("store-dsn", "", "database path or connection string")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: datadose clean [flags] <input path or URL> <output path>")
		fs.PrintDefaults()
	}

	cfg, logger, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("clean needs an input and an output")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = runClean(ctx, cfg, fs.Arg(0), fs.Arg(1), logger)
	return err
}

// runClean performs one cleaning run and returns its statistics.
func runClean(ctx context.Context, cfg config, src, dst string, logger *slog.Logger) (*pipeline.Stats, error) {
	p, err := loadPipeline(cfg, logger)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "datadose-*")
	if err != nil {
		return nil, fmt.Errorf("work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	path, err := dataset.Resolve(ctx, src, workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve input: %w", err)
	}
	tbl, err := dataset.ReadFile(path, cfg.Input.Format, readOptions(cfg))
	if err != nil {
		return nil, err
	}
	column, err := dataset.DetectColumn(tbl.Columns, cfg.Input.Column)
	if err != nil {
		return nil, err
	}
	logger.Info("input loaded", "path", path, "rows", len(tbl.Rows), "columns", len(tbl.Columns), "ingredient_column", column)

	records, err := dataset.ToRecords(tbl, column)
	if err != nil {
		return nil, err
	}
	rows, stats, err := p.RunConcurrent(ctx, records, cfg.Workers)
	if err != nil {
		return nil, err
	}

	if err := dataset.WriteFile(dst, cfg.Output.Format, dataset.FromNormalized(rows, tbl.Columns)); err != nil {
		return nil, err
	}
	logger.Info("output written", "path", dst, "rows", len(rows))
	stats.Log(logger)

	if cfg.Store.Driver != "" {
		if err := saveRun(ctx, cfg.Store, stats, src, rows); err != nil {
			return stats, err
		}
		logger.Info("run stored", "driver", cfg.Store.Driver, "run_id", stats.RunID)
	}
	return stats, nil
}

// loadPipeline loads the lexicon through the self-test gate.
func loadPipeline(cfg config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	reg := lexicon.NewRegistry(cfg.LexiconDir)
	eng := pipeline.NewEngine(reg, pipeline.Options{Logger: logger})
	if err := reg.Load(); err != nil {
		return nil, err
	}
	return eng.Pipeline()
}

func readOptions(cfg config) dataset.ReadOptions {
	return dataset.ReadOptions{
		Delimiter: cfg.Input.Delimiter,
		Encoding:  cfg.Input.Encoding,
		Sheet:     cfg.Input.Sheet,
	}
}

func saveRun(ctx context.Context, sc storeConfig, stats *pipeline.Stats, src string, rows []pipeline.Normalized) error {
	st, err := store.Open(sc.Driver, sc.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveRun(ctx, stats, src); err != nil {
		return err
	}
	return st.SaveRows(ctx, stats.RunID, rows)
}
