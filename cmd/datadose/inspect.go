package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hazyhaar/datadose/pkg/dataset"
	"github.com/hazyhaar/datadose/pkg/lexicon"
	"github.com/hazyhaar/datadose/pkg/pipeline"
	"github.com/hazyhaar/datadose/pkg/store"
)

func cmdSelfTest(args []string) error {
	fs := newFlagSet("selftest")
	cfg, logger, err := setup(fs, args)
	if err != nil {
		return err
	}
	if _, err := loadPipeline(cfg, logger); err != nil {
		return err
	}
	fmt.Printf("self-test passed (%d samples)\n", len(pipeline.SelfTestCases))
	return nil
}

func cmdAudit(args []string) error {
	fs := newFlagSet("audit")
	fs.String("column", "", "ingredient column (default: auto-detect)")
	fs.String("encoding", "", "input charset")
	fs.String("delimiter", "", "input field delimiter")
	fs.String("format", "", "input format (default: from extension)")
	fs.String("sheet", "", "xlsx sheet (default: first)")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: datadose audit [flags] <input>")
	}

	rep, err := runAudit(context.Background(), cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Printf("%d of %d rows contain placeholder tokens\n\n", rep.RowsWithPlaceholders, rep.Rows)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tCOUNT\tDECODES TO\tEXAMPLE")
	for _, c := range rep.Codes {
		value := "(unmapped)"
		if c.Mapped {
			value = c.Value
		}
		example := ""
		if len(c.Examples) > 0 {
			example = c.Examples[0]
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.Code, c.Count, value, example)
	}
	return tw.Flush()
}

func runAudit(ctx context.Context, cfg config, src string) (dataset.AuditReport, error) {
	lex, err := loadLexicon(cfg)
	if err != nil {
		return dataset.AuditReport{}, err
	}
	workDir, err := os.MkdirTemp("", "datadose-*")
	if err != nil {
		return dataset.AuditReport{}, err
	}
	defer os.RemoveAll(workDir)

	path, err := dataset.Resolve(ctx, src, workDir)
	if err != nil {
		return dataset.AuditReport{}, err
	}
	tbl, err := dataset.ReadFile(path, cfg.Input.Format, readOptions(cfg))
	if err != nil {
		return dataset.AuditReport{}, err
	}
	column, err := dataset.DetectColumn(tbl.Columns, cfg.Input.Column)
	if err != nil {
		return dataset.AuditReport{}, err
	}
	records, err := dataset.ToRecords(tbl, column)
	if err != nil {
		return dataset.AuditReport{}, err
	}
	return dataset.Audit(lex, records), nil
}

func cmdTables(args []string) error {
	fs := newFlagSet("tables")
	term := fs.String("term", "", "explain how the tables see one term")
	snapshot := fs.String("snapshot", "", "write the mapping tables to this gob file")
	cfg, logger, err := setup(fs, args)
	if err != nil {
		return err
	}
	lex, err := loadLexicon(cfg)
	if err != nil {
		return err
	}

	if *snapshot != "" {
		if err := lexicon.SaveSnapshot(lex, *snapshot); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", *snapshot, "lexicon", lex.Manifest.ID)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if *term != "" {
		return enc.Encode(lex.Explain(*term))
	}
	return enc.Encode(lex.Stats())
}

func cmdRuns(args []string) error {
	fs := newFlagSet("runs")
	fs.String("store-driver", "", "sqlite or postgres")
	fs.String("store-dsn", "", "database path or connection string")
	limit := fs.Int("limit", 20, "number of runs to list, 0 for all")
	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	if cfg.Store.Driver == "" {
		return fmt.Errorf("no store configured")
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSOURCE\tPROCESSED\tADMITTED\tDROPPED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", r.RunID, r.Started.Format("2006-01-02 15:04:05"),
			r.Source, r.Processed, r.Admitted, r.Dropped)
	}
	return tw.Flush()
}

// loadLexicon loads the configured tables without the self-test gate.
func loadLexicon(cfg config) (*lexicon.Lexicon, error) {
	if cfg.LexiconDir == "" {
		return lexicon.Default()
	}
	return lexicon.LoadDir(cfg.LexiconDir)
}
