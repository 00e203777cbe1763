package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"finreport/internal/core"
)

// spyLookup records lookups and answers with a fixed rate or error.
type spyLookup struct {
	calls int
	rate  float64
	err   error
}

func (s *spyLookup) Rate(context.Context, string, time.Time) (float64, error) {
	s.calls++
	return s.rate, s.err
}

func TestExchangeReportingCurrencyShortCircuits(t *testing.T) {
	spy := &spyLookup{err: errors.New("must not be called")}
	c := NewConverter(core.ReportingCurrency, spy, nil)

	for _, tc := range []struct {
		amount float64
		date   string
	}{
		{-1000, "15.12.2024"},
		{42.5, "31.06.2000"},
		{0, "not a date"},
	} {
		got, err := c.Exchange(context.Background(), tc.amount, "RUB", tc.date)
		if err != nil || got != tc.amount {
			t.Fatalf("Exchange(%v, RUB, %q) = %v, %v", tc.amount, tc.date, got, err)
		}
	}
	if spy.calls != 0 {
		t.Fatalf("expected no lookups, got %d", spy.calls)
	}
}

func TestExchangeInvalidDate(t *testing.T) {
	spy := &spyLookup{rate: 100}
	c := NewConverter("", spy, nil)

	_, err := c.Exchange(context.Background(), 10, "USD", "31.06.2000")
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if spy.calls != 0 {
		t.Fatalf("invalid date must not reach the lookup")
	}
}

func TestExchangeMultipliesByRate(t *testing.T) {
	spy := &spyLookup{rate: 100.5}
	c := NewConverter("RUB", spy, nil)

	got, err := c.Exchange(context.Background(), -2, "usd", "15.12.2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -201 {
		t.Fatalf("expected -201, got %v", got)
	}
}

func TestExchangePropagatesLookupError(t *testing.T) {
	spy := &spyLookup{err: ErrCurrencyNotFound}
	c := NewConverter("RUB", spy, nil)

	_, err := c.Exchange(context.Background(), 1, "XYZ", "15.12.2024")
	if !errors.Is(err, ErrCurrencyNotFound) {
		t.Fatalf("expected ErrCurrencyNotFound, got %v", err)
	}
}

func TestConverterWithCache(t *testing.T) {
	fetches := 0
	f := FetcherFunc(func(_ context.Context, _ time.Time) (core.Rates, error) {
		fetches++
		return core.Rates{"USD": 90}, nil
	})
	c := NewConverter("RUB", NewCache(f, nil), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if got, err := c.Exchange(ctx, 2, "USD", "15.12.2024"); err != nil || got != 180 {
			t.Fatalf("Exchange = %v, %v", got, err)
		}
	}
	if fetches != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetches)
	}
}
