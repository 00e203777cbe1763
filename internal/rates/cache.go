// Package rates converts amounts into the reporting currency using exchange
// rates fetched per calendar date.
package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finreport/internal/cache"
	"finreport/internal/core"
	"finreport/internal/log"
)

var (
	// ErrRatesUnavailable is returned when the rates of a date could not be fetched.
	ErrRatesUnavailable = errors.New("rates unavailable")
	// ErrCurrencyNotFound is returned when a date's rates do not list the currency.
	ErrCurrencyNotFound = errors.New("currency not found")
)

// Fetcher retrieves every known rate for one date.
type Fetcher interface {
	FetchRates(ctx context.Context, date time.Time) (core.Rates, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, date time.Time) (core.Rates, error)

// FetchRates calls f.
func (f FetcherFunc) FetchRates(ctx context.Context, date time.Time) (core.Rates, error) {
	return f(ctx, date)
}

// RateLookup returns the rate of a currency on a date.
type RateLookup interface {
	Rate(ctx context.Context, currency string, date time.Time) (float64, error)
}

// Cache memoizes fetched rates by date. The first lookup for a date fetches
// the full table of that date; later lookups for the same date never fetch
// again. A failed fetch stores nothing, so the next lookup for that date
// calls the fetcher again.
//
// Cache is not safe for concurrent use.
type Cache struct {
	fetcher Fetcher
	table   cache.Cache[time.Time, core.Rates]
	logger  *log.Logger
	fetches int
}

var _ RateLookup = (*Cache)(nil)

// NewCache creates an empty rate cache over fetcher.
func NewCache(fetcher Fetcher, logger *log.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		table:   cache.NewTable[time.Time, core.Rates](),
		logger:  log.OrDiscard(logger).WithComponent(log.ComponentRates),
	}
}

// Rate returns the rate of currency on date.
func (c *Cache) Rate(ctx context.Context, currency string, date time.Time) (float64, error) {
	day := core.Day(date)
	code := strings.ToUpper(strings.TrimSpace(currency))

	rates, err := c.Rates(ctx, day)
	if err != nil {
		return 0, err
	}

	rate, ok := rates[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s on %s", ErrCurrencyNotFound, code, core.FormatDate(day))
	}
	return rate, nil
}

// Rates returns the whole cached table of a date, fetching it when needed.
func (c *Cache) Rates(ctx context.Context, date time.Time) (core.Rates, error) {
	day := core.Day(date)
	if rates, ok := c.table.Get(day); ok {
		return rates, nil
	}
	rates, err := c.fetch(ctx, day)
	if err != nil {
		return nil, err
	}
	c.table.Set(day, rates)
	return rates, nil
}

// Fetches returns how many times the underlying fetcher was called.
func (c *Cache) Fetches() int {
	return c.fetches
}

// Dates returns how many dates are cached.
func (c *Cache) Dates() int {
	return c.table.Size()
}

func (c *Cache) fetch(ctx context.Context, day time.Time) (core.Rates, error) {
	c.fetches++
	fetched, err := c.fetcher.FetchRates(ctx, day)
	if err != nil {
		c.logger.Failure(ctx, "Failed to fetch rates", err, log.OpFetch, log.ErrorTypeNetwork,
			log.NewFields().With(log.FieldDate, core.FormatDate(day)))
		return nil, fmt.Errorf("%w for %s: %w", ErrRatesUnavailable, core.FormatDate(day), err)
	}

	rates := make(core.Rates, len(fetched))
	for code, rate := range fetched {
		rates[strings.ToUpper(code)] = rate
	}
	c.logger.DebugContext(ctx, "Rates fetched",
		log.FieldDate, core.FormatDate(day),
		log.FieldRows, len(rates),
		log.FieldFetches, c.fetches)
	return rates, nil
}
