package main

import (
	"context"
	"fmt"

	"finreport/internal/backend"
	"finreport/internal/cli"
	"finreport/internal/config"
	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/rates"
	"finreport/internal/rates/cbr"
	"finreport/internal/report"
	"finreport/internal/settings"
	"finreport/internal/sheets"
	"finreport/internal/stocks"
)

// app is the wired set of collaborators shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	reader    sheets.TransactionReader
	rateCache *rates.Cache
	assembler *report.Assembler
	queries   *report.Queries
	writer    *report.Writer
	closers   []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	a := &app{cfg: cfg, logger: logger, reader: res.Reader}
	if res.Cleanup != nil {
		a.closers = append(a.closers, func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err)
			}
		})
	}

	a.rateCache = rates.NewCache(cbr.New(cfg.RatesURL, cfg.HTTPTimeout, logger), logger)
	a.assembler = report.NewAssembler(report.Deps{
		Transactions: res.Reader,
		Settings:     settings.File{Path: cfg.SettingsFile},
		Stocks:       stocks.New(cfg.StocksURL, cfg.APIKey, cfg.HTTPTimeout, logger),
		Rates:        a.rateCache,
		Exchanger:    rates.NewConverter(core.ReportingCurrency, a.rateCache, logger),
	}, logger)
	a.queries = report.NewQueries(logger)

	notifier, closeNotifier := cli.InitNotifier(cfg, logger)
	a.closers = append(a.closers, closeNotifier)
	a.writer = report.NewWriter(cfg.ReportsDir, notifier, logger)

	return a, nil
}

// ready reports whether the backend can serve requests. Only backends with
// a connection to check implement Ping.
func (a *app) ready(ctx context.Context) error {
	if p, ok := a.reader.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.logger.Debug("Rate cache released",
		log.FieldFetches, a.rateCache.Fetches(),
		"dates", a.rateCache.Dates())
}
