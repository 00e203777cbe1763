// Package report assembles the home page and the file reports.
//
// Report entry points never return errors: a failing stage is logged and
// the report comes back empty.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finreport/internal/aggregate"
	"finreport/internal/core"
	"finreport/internal/filter"
	"finreport/internal/log"
	"finreport/internal/rates"
	"finreport/internal/settings"
	"finreport/internal/sheets"
	"finreport/internal/stocks"
)

// SettingsSource returns the user's watch lists.
type SettingsSource interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// Deps are the collaborators of an Assembler.
type Deps struct {
	Transactions sheets.TransactionReader
	Settings     SettingsSource
	Stocks       stocks.Lister
	Rates        rates.RateLookup
	Exchanger    rates.Exchanger
}

type Assembler struct {
	deps       Deps
	aggregator *aggregate.Aggregator
	reporting  string
	logger     *log.Logger
}

// NewAssembler creates an assembler. Amounts are reported in
// core.ReportingCurrency.
func NewAssembler(deps Deps, logger *log.Logger) *Assembler {
	logger = log.OrDiscard(logger)
	return &Assembler{
		deps:       deps,
		aggregator: aggregate.New(deps.Exchanger, logger),
		reporting:  core.ReportingCurrency,
		logger:     logger.WithComponent(log.ComponentReport),
	}
}

// stageError tags a failure with its error type for logging.
type stageError struct {
	errorType string
	err       error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func stage(errorType string, err error) error {
	return &stageError{errorType: errorType, err: err}
}

// Home builds the home page for ref, a "YYYY-MM-DD HH:MM:SS" timestamp. The
// month window runs from the first of ref's month to ref. Any failure yields
// an empty page.
func (a *Assembler) Home(ctx context.Context, ref string) core.HomePage {
	page, err := a.home(ctx, ref)
	if err != nil {
		errorType := log.ErrorTypeInternal
		var se *stageError
		if errors.As(err, &se) {
			errorType = se.errorType
		}
		a.logger.Failure(ctx, "Home page assembly failed", err, log.OpAssemble, errorType,
			log.NewFields().WithReport("home").With(log.FieldDate, ref))
		return core.HomePage{}
	}
	a.logger.InfoContext(ctx, "Home page assembled",
		log.FieldReport, "home",
		log.FieldDate, ref,
		"cards", len(page.Cards))
	return page
}

func (a *Assembler) home(ctx context.Context, ref string) (core.HomePage, error) {
	now, err := core.ParseRequestTime(ref)
	if err != nil {
		return core.HomePage{}, stage(log.ErrorTypeValidation, err)
	}

	txs, err := a.deps.Transactions.ReadTransactions(ctx)
	if err != nil {
		return core.HomePage{}, stage(log.ErrorTypeIO, fmt.Errorf("read transactions: %w", err))
	}

	window := filter.MonthWindow(now)
	inMonth, err := filter.Apply(txs, filter.Criteria{Window: &window})
	if err != nil {
		return core.HomePage{}, stage(log.ErrorTypeValidation, fmt.Errorf("filter month: %w", err))
	}

	cards := a.aggregator.CardSummaries(ctx, inMonth)
	top := a.aggregator.Top(ctx, inMonth, aggregate.TopCount)

	prefs, err := a.deps.Settings.Load(ctx)
	if err != nil {
		return core.HomePage{}, stage(log.ErrorTypeConfiguration, fmt.Errorf("load settings: %w", err))
	}

	currencyRates, err := a.currencyRates(ctx, prefs.UserCurrencies, now)
	if err != nil {
		return core.HomePage{}, stage(log.ErrorTypeNetwork, err)
	}

	stockPrices, err := a.stockPrices(ctx, prefs.UserStocks)
	if err != nil {
		return core.HomePage{}, stage(log.ErrorTypeNetwork, err)
	}

	return core.HomePage{
		Greeting:        Greeting(now),
		Cards:           cards,
		TopTransactions: top,
		CurrencyRates:   currencyRates,
		StockPrices:     stockPrices,
	}, nil
}

// currencyRates looks up each currency at the day of ref. A currency the
// rate source does not know is reported as 0; the reporting currency is 1.
func (a *Assembler) currencyRates(ctx context.Context, currencies []string, ref time.Time) ([]core.CurrencyRate, error) {
	out := make([]core.CurrencyRate, 0, len(currencies))
	for _, code := range currencies {
		if code == a.reporting {
			out = append(out, core.CurrencyRate{Currency: code, Rate: 1})
			continue
		}
		rate, err := a.deps.Rates.Rate(ctx, code, core.Day(ref))
		switch {
		case errors.Is(err, rates.ErrCurrencyNotFound):
			a.logger.WarnContext(ctx, "No rate for currency", log.FieldCurrency, code)
			rate = 0
		case err != nil:
			return nil, fmt.Errorf("rate %s: %w", code, err)
		}
		out = append(out, core.CurrencyRate{Currency: code, Rate: core.Round2(rate)})
	}
	return out, nil
}

// stockPrices returns the watched tickers in watch-list order. Nothing is
// requested when the watch list is empty.
func (a *Assembler) stockPrices(ctx context.Context, symbols []string) ([]core.StockPrice, error) {
	out := make([]core.StockPrice, 0, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}
	listing, err := a.deps.Stocks.Listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock listing: %w", err)
	}
	for _, l := range stocks.Select(listing, symbols) {
		out = append(out, core.StockPrice{Stock: l.Symbol, Price: core.Round2(l.Price)})
	}
	return out, nil
}
