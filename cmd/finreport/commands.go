package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"finreport/internal/cli"
	"finreport/internal/config"
	"finreport/internal/core"
	apphttp "finreport/internal/http"
	"finreport/internal/log"
	"finreport/internal/sheets"
	"finreport/internal/storage"
)

var stdout io.Writer = os.Stdout

// parseFlags parses args into fs, mapping failures to errUsage.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return errUsage
	}
	return nil
}

func runHome(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("home", flag.ContinueOnError)
	date := fs.String("date", time.Now().Format(core.RequestLayout), "reference time, YYYY-MM-DD HH:MM:SS")
	table := fs.Bool("table", false, "print tables instead of JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	page := a.assembler.Home(ctx, *date)
	if page.IsEmpty() {
		return errors.New("home page is unavailable, see the log for details")
	}
	if *table {
		return renderHome(stdout, page)
	}
	return printJSON(stdout, page)
}

func runCategory(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("category", flag.ContinueOnError)
	category := fs.String("category", "", "bank category to report (required)")
	date := fs.String("date", "", "end of the three-month window, DD.MM.YYYY (default today)")
	out := fs.String("out", "", "output file (default <REPORTS_DIR>/spending_by_category_<date>.json)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*category) == "" {
		fmt.Fprintln(os.Stderr, "-category is required")
		return errUsage
	}

	txs := sheets.Load(ctx, a.reader, a.logger)
	result := a.queries.SpendingByCategory(ctx, txs, *category, *date)
	return writeReport(ctx, a, "spending_by_category", *out, result)
}

func runTransfers(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("transfers", flag.ContinueOnError)
	out := fs.String("out", "", "output file (default <REPORTS_DIR>/transfers_<date>.json)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	txs := sheets.Load(ctx, a.reader, a.logger)
	result := a.queries.SearchTransfers(ctx, txs)
	return writeReport(ctx, a, "transfers", *out, result)
}

func writeReport(ctx context.Context, a *app, name, out string, v any) error {
	path, err := a.writer.Write(ctx, name, out, v)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

// runImport copies the configured source into a SQLite snapshot.
func runImport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	out := fs.String("out", a.cfg.SQLiteDBPath, "SQLite database to write")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if a.cfg.DataBackend == config.BackendSQLite && *out == a.cfg.SQLiteDBPath {
		fmt.Fprintln(os.Stderr, "import source and target are the same database")
		return errUsage
	}

	txs, err := a.reader.ReadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("read transactions: %w", err)
	}

	repo := cli.InitSQLite(a.logger, *out)
	defer repo.Close()
	repo.SetSource(a.cfg.DataBackend)

	n, err := repo.SaveTransactions(ctx, txs)
	if err != nil {
		a.logger.Failure(ctx, "Import failed", err, log.OpImport, log.ErrorTypeDatabase,
			log.NewFields().With(log.FieldFile, *out))
		return err
	}
	imp, err := repo.LastImport(ctx)
	if err != nil && !errors.Is(err, storage.ErrNoImport) {
		return err
	}
	fmt.Fprintf(stdout, "imported %d transactions into %s (import %s)\n", n, *out, imp.ID)
	return nil
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":"+a.cfg.Port, "listen address")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	srv := apphttp.NewServer(*addr, apphttp.Deps{
		Assembler:    a.assembler,
		Queries:      a.queries,
		Transactions: a.reader,
		Ready:        a.ready,
	}, a.logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 2 * a.cfg.HTTPTimeout
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	stopped := cli.GracefulShutdown(a.logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Failure(ctx, "Server shutdown error", err, log.OpShutdown, log.ErrorTypeInternal, nil)
		}
	})

	a.logger.Info("Starting finreport server", "addr", *addr, log.FieldBackend, a.cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", *addr, err)
	}

	<-stopped.Done()
	a.logger.Info("Server stopped gracefully")
	return nil
}

// printJSON writes v the way report files are written: indented, with
// Cyrillic text left as is.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
