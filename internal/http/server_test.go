package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finreport/internal/core"
	"finreport/internal/rates"
	"finreport/internal/report"
	"finreport/internal/settings"
	"finreport/internal/sheets"
	"finreport/internal/sheets/memory"
	"finreport/internal/stocks"
)

type noRates struct{}

func (noRates) Rate(context.Context, string, time.Time) (float64, error) {
	return 0, rates.ErrCurrencyNotFound
}

type noStocks struct{}

func (noStocks) Listing(context.Context) ([]stocks.Listing, error) { return nil, nil }

type brokenReader struct{}

func (brokenReader) ReadTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("workbook locked")
}

func ops() []core.Transaction {
	return []core.Transaction{
		{PaymentDate: "10.12.2024", CardNumber: "*1234", Status: "OK", PaymentAmount: -1500, PaymentCurrency: "RUB", Cashback: 15, Category: "Супермаркеты", Description: "Магнит"},
		{PaymentDate: "12.12.2024", CardNumber: "*1234", Status: "OK", PaymentAmount: -300, PaymentCurrency: "RUB", Category: core.CategoryTransfers, Description: "Константин Л."},
		{PaymentDate: "01.10.2024", CardNumber: "*1234", Status: "OK", PaymentAmount: -200, PaymentCurrency: "RUB", Category: "Супермаркеты", Description: "Лента"},
	}
}

func newTestServer(t *testing.T, reader sheets.TransactionReader, ready func(context.Context) error) *Server {
	t.Helper()
	assembler := report.NewAssembler(report.Deps{
		Transactions: reader,
		Settings:     settings.Static{UserCurrencies: []string{"RUB"}},
		Stocks:       noStocks{},
		Rates:        noRates{},
		Exchanger:    rates.NewConverter(core.ReportingCurrency, noRates{}, nil),
	}, nil)

	srv := NewServer(":0", Deps{
		Assembler:    assembler,
		Queries:      report.NewQueries(nil),
		Transactions: reader,
		Ready:        ready,
	}, nil)
	srv.now = func() time.Time { return time.Date(2024, 12, 16, 15, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, memory.New(), nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(t, srv, path); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	down := newTestServer(t, memory.New(), func(context.Context) error { return errors.New("db closed") })
	if rr := get(t, down, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d, want 503", rr.Code)
	}
}

func TestHome(t *testing.T) {
	srv := newTestServer(t, memory.New(ops()...), nil)

	for _, target := range []string{"/api/home", "/api/home?date=2024-12-16+15:30:00"} {
		rr := get(t, srv, target)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", target, rr.Code, rr.Body)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Fatalf("content type %q", ct)
		}

		var page core.HomePage
		if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if page.Greeting != "Добрый день" {
			t.Fatalf("greeting %q", page.Greeting)
		}
		if len(page.Cards) != 1 || page.Cards[0].LastDigits != "1234" || page.Cards[0].TotalSpent != 1800 {
			t.Fatalf("cards %+v", page.Cards)
		}
		if len(page.CurrencyRates) != 1 || page.CurrencyRates[0].Rate != 1 {
			t.Fatalf("rates %+v", page.CurrencyRates)
		}
	}
}

func TestHomeErrors(t *testing.T) {
	srv := newTestServer(t, memory.New(ops()...), nil)
	if rr := get(t, srv, "/api/home?date=16.12.2024"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date status=%d", rr.Code)
	}

	broken := newTestServer(t, brokenReader{}, nil)
	rr := get(t, broken, "/api/home")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("broken reader status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error"`) {
		t.Fatalf("expected error body, got %s", rr.Body)
	}
}

func TestCategoryReport(t *testing.T) {
	srv := newTestServer(t, memory.New(ops()...), nil)

	if rr := get(t, srv, "/api/reports/category"); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing category status=%d", rr.Code)
	}

	rr := get(t, srv, "/api/reports/category?category=%D0%A1%D1%83%D0%BF%D0%B5%D1%80%D0%BC%D0%B0%D1%80%D0%BA%D0%B5%D1%82%D1%8B&date=16.12.2024")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Магнит") {
		t.Fatalf("Cyrillic must be written verbatim: %s", rr.Body)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows, got %+v", txs)
	}
}

func TestTransfers(t *testing.T) {
	srv := newTestServer(t, memory.New(ops()...), nil)
	rr := get(t, srv, "/api/transfers")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(txs) != 1 || txs[0].Description != "Константин Л." {
		t.Fatalf("unexpected transfers %+v", txs)
	}

	empty := newTestServer(t, brokenReader{}, nil)
	if body := strings.TrimSpace(get(t, empty, "/api/transfers").Body.String()); body != "[]" {
		t.Fatalf("failing reader must yield [], got %s", body)
	}
}

func TestMiddlewareChain(t *testing.T) {
	srv := newTestServer(t, memory.New(), nil)

	rr := get(t, srv, "/healthz")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing security headers")
	}

	post := httptest.NewRecorder()
	srv.Handler.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/api/home", nil))
	if post.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status=%d, want 405", post.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limited := NewServer(":0", Deps{Queries: report.NewQueries(nil), Transactions: memory.New(), RequestsPerMinute: 1}, nil)
	t.Cleanup(func() { _ = limited.Shutdown(context.Background()) })

	if rr := get(t, limited, "/api/transfers"); rr.Code != http.StatusOK {
		t.Fatalf("first request status=%d", rr.Code)
	}
	rr := get(t, limited, "/api/transfers")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d, want 429", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "rate limit") {
		t.Fatalf("body %s", rr.Body)
	}
}
