package main

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"

	"finreport/internal/core"
)

func TestRenderHome(t *testing.T) {
	page := core.HomePage{
		Greeting:        "Добрый вечер",
		Cards:           []core.CardSummary{{LastDigits: "1234", TotalSpent: 6000, Cashback: 10}},
		TopTransactions: []core.TopTransaction{{Date: "15.12.2024", Amount: -1000.5, Category: "Супермаркеты", Description: "Магнит"}},
		CurrencyRates:   []core.CurrencyRate{{Currency: "USD", Rate: 100.123}},
	}

	var buf bytes.Buffer
	if err := renderHome(&buf, page); err != nil {
		t.Fatalf("renderHome: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Добрый вечер", "1234", "6000.00", "-1000.50", "Магнит", "100.12", "Stock prices\n  (none)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintJSONKeepsCyrillic(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]string{"category": "Переводы & прочее"}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}
	want := "{\n    \"category\": \"Переводы & прочее\"\n}\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("transfers", flag.ContinueOnError)
	out := fs.String("out", "", "")
	if err := parseFlags(fs, []string{"-out", "x.json"}); err != nil || *out != "x.json" {
		t.Fatalf("parseFlags: %v, out=%q", err, *out)
	}

	for _, args := range [][]string{{"-nope"}, {"extra"}} {
		fs := flag.NewFlagSet("transfers", flag.ContinueOnError)
		fs.String("out", "", "")
		if err := parseFlags(fs, args); !errors.Is(err, errUsage) {
			t.Fatalf("args %v: expected errUsage, got %v", args, err)
		}
	}
}
