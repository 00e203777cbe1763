package rates

import (
	"context"
	"fmt"
	"strings"

	"finreport/internal/core"
	"finreport/internal/log"
)

// Exchanger converts an amount to the reporting currency.
type Exchanger interface {
	Exchange(ctx context.Context, amount float64, currency, date string) (float64, error)
}

// Converter converts signed amounts into the reporting currency using the
// rate of the payment date.
type Converter struct {
	reporting string
	lookup    RateLookup
	logger    *log.Logger
}

var _ Exchanger = (*Converter)(nil)

// NewConverter creates a converter into the reporting currency.
func NewConverter(reporting string, lookup RateLookup, logger *log.Logger) *Converter {
	if reporting == "" {
		reporting = core.ReportingCurrency
	}
	return &Converter{
		reporting: strings.ToUpper(reporting),
		lookup:    lookup,
		logger:    log.OrDiscard(logger).WithComponent(log.ComponentConverter),
	}
}

// Exchange returns amount * rate(currency, date). Amounts already in the
// reporting currency are returned unchanged without parsing the date or
// looking anything up. No rounding is applied.
func (c *Converter) Exchange(ctx context.Context, amount float64, currency, date string) (float64, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == c.reporting {
		return amount, nil
	}

	day, err := core.ParseDate(date)
	if err != nil {
		return 0, fmt.Errorf("exchange %s: %w", code, err)
	}

	rate, err := c.lookup.Rate(ctx, code, day)
	if err != nil {
		c.logger.WarnContext(ctx, "No rate for conversion",
			log.NewFields().WithRate(code, date).WithError(err).ToSlice()...)
		return 0, fmt.Errorf("exchange %s: %w", code, err)
	}
	return amount * rate, nil
}
