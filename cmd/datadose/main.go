package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhaar/datadose/pkg/pipeline"
)

var commands = map[string]func(args []string) error{
	"clean":    cmdClean,
	"serve":    cmdServe,
	"mcp":      cmdMCP,
	"selftest": cmdSelfTest,
	"audit":    cmdAudit,
	"tables":   cmdTables,
	"runs":     cmdRuns,
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(1)
	}
	if err := cmd(os.Args[2:]); err != nil {
		attrs := []any{"command", os.Args[1], "error", err}
		var ste *pipeline.SelfTestError
		if errors.As(err, &ste) {
			attrs = append(attrs, "failed", len(ste.Failures), "cases", ste.Total)
		}
		slog.Error("datadose failed", attrs...)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: datadose <command> [flags]

Commands:
  clean     Normalize the ingredient column of a dataset
  serve     Start the HTTP API
  mcp       Serve the MCP tools over stdio
  selftest  Run the built-in samples against the lexicon
  audit     Report corrupted placeholder tokens in a dataset
  tables    Describe the loaded lexicon, or explain one term
  runs      List runs saved in the store
`)
}
