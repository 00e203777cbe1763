// Command finreport builds personal finance reports from a bank export.
//
// Usage:
//
//	finreport home [-date "YYYY-MM-DD HH:MM:SS"] [-table]
//	finreport category -category NAME [-date DD.MM.YYYY] [-out PATH]
//	finreport transfers [-out PATH]
//	finreport import -out DB
//	finreport serve
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"finreport/internal/cli"
	"finreport/internal/log"
)

// errUsage marks invalid command lines; main exits with status 2.
var errUsage = errors.New("usage")

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"home":      runHome,
	"category":  runCategory,
	"transfers": runTransfers,
	"import":    runImport,
	"serve":     runServe,
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: finreport <command> [flags]

commands:
  home       print the home page summary
  category   write the spending report of one category
  transfers  write the transfers to individuals
  import     copy the transactions into a SQLite snapshot
  serve      run the HTTP API`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Failure(ctx, "Failed to initialize", err, log.OpStartup, log.ErrorTypeConfiguration,
			log.NewFields().With(log.FieldBackend, cfg.DataBackend))
		os.Exit(1)
	}

	err = run(ctx, a, os.Args[2:])
	a.Close()
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		logger.Error("Command failed", "command", os.Args[1], log.FieldError, err)
		os.Exit(1)
	}
}
