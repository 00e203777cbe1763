package cbr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

const dailyXML = `<?xml version="1.0" encoding="windows-1251"?>
<ValCurs Date="15.12.2024" name="Foreign Currency Market">
<Valute ID="R01235"><NumCode>840</NumCode><CharCode>USD</CharCode><Nominal>1</Nominal><Name>Доллар США</Name><Value>103,3837</Value></Valute>
<Valute ID="R01239"><NumCode>978</NumCode><CharCode>EUR</CharCode><Nominal>1</Nominal><Name>Евро</Name><Value>108,5000</Value></Valute>
<Valute ID="R01820"><NumCode>392</NumCode><CharCode>JPY</CharCode><Nominal>100</Nominal><Name>Японских иен</Name><Value>67,2000</Value></Valute>
</ValCurs>`

func encode1251(t *testing.T, s string) string {
	t.Helper()
	out, err := charmap.Windows1251.NewEncoder().String(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return out
}

func TestParseRates(t *testing.T) {
	got, err := ParseRates(strings.NewReader(encode1251(t, dailyXML)))
	if err != nil {
		t.Fatalf("ParseRates: %v", err)
	}
	want := map[string]float64{"USD": 103.3837, "EUR": 108.5, "JPY": 0.672}
	for code, rate := range want {
		if diff := got[code] - rate; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s = %v, want %v", code, got[code], rate)
		}
	}
}

func TestParseRatesRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"not xml":       "<html>oops",
		"non numeric":   `<?xml version="1.0" encoding="utf-8"?><ValCurs><Valute><CharCode>USD</CharCode><Nominal>1</Nominal><Value>n/a</Value></Valute></ValCurs>`,
		"empty value":   `<?xml version="1.0" encoding="utf-8"?><ValCurs><Valute><CharCode>USD</CharCode><Nominal>1</Nominal><Value></Value></Valute></ValCurs>`,
		"zero nominal":  `<?xml version="1.0" encoding="utf-8"?><ValCurs><Valute><CharCode>USD</CharCode><Nominal>0</Nominal><Value>1,0</Value></Valute></ValCurs>`,
		"missing code":  `<?xml version="1.0" encoding="utf-8"?><ValCurs><Valute><Nominal>1</Nominal><Value>1,0</Value></Valute></ValCurs>`,
		"wrong charset": `<?xml version="1.0" encoding="koi8-r"?><ValCurs></ValCurs>`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRates(strings.NewReader(doc)); !errors.Is(err, ErrMalformedRates) {
				t.Fatalf("expected ErrMalformedRates, got %v", err)
			}
		})
	}
}

func TestFetchRatesSendsDateAndParses(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("date_req")
		w.Header().Set("Content-Type", "application/xml; charset=windows-1251")
		_, _ = w.Write([]byte(encode1251(t, dailyXML)))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	got, err := c.FetchRates(context.Background(), time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchRates: %v", err)
	}
	if gotQuery != "15/12/2024" {
		t.Fatalf("date_req = %q", gotQuery)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rates, got %v", got)
	}
}

func TestFetchRatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	if _, err := c.FetchRates(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error for 503")
	}
}
