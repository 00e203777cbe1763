package sheets

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"finreport/internal/core"
)

func TestDecodeRows(t *testing.T) {
	rows := [][]string{
		Header,
		{"31.12.2021 16:44:00", "31.12.2021", "*7197", "OK", "-160,89", "RUB", "-160,89", "RUB", "", "Супермаркеты", "5411", "Колхоз", "3", "0", "160,89"},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{"31.12.2021 16:42:04", "31.12.2021", "", "FAILED", "-64", "RUB", "-64"},
	}

	got, err := DecodeRows(rows)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}

	want := core.Transaction{
		OperationDate:     "31.12.2021 16:44:00",
		PaymentDate:       "31.12.2021",
		CardNumber:        "*7197",
		Status:            "OK",
		OperationAmount:   -160.89,
		OperationCurrency: "RUB",
		PaymentAmount:     -160.89,
		PaymentCurrency:   "RUB",
		Category:          "Супермаркеты",
		MCC:               "5411",
		Description:       "Колхоз",
		Bonuses:           3,
		RoundedAmount:     160.89,
	}
	if got[0] != want {
		t.Fatalf("row 1:\n got %+v\nwant %+v", got[0], want)
	}
	if got[1].Status != "FAILED" || got[1].PaymentCurrency != "" || got[1].Cashback != 0 {
		t.Fatalf("short row decoded as %+v", got[1])
	}
}

func TestDecodeRowsColumnOrder(t *testing.T) {
	rows := [][]string{
		{ColDescription, ColCategory, ColPaymentCurrency, ColPaymentAmount, ColStatus, ColCardNumber, ColPaymentDate},
		{"Магнит", "Супермаркеты", "RUB", "-10", "OK", "*1111", "01.12.2024"},
	}
	got, err := DecodeRows(rows)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if got[0].Description != "Магнит" || got[0].PaymentAmount != -10 || got[0].CardNumber != "*1111" {
		t.Fatalf("unexpected %+v", got[0])
	}
}

func TestDecodeRowsErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		rows := [][]string{{ColPaymentDate, ColStatus}}
		_, err := DecodeRows(rows)
		if !errors.Is(err, core.ErrMissingColumn) {
			t.Fatalf("expected ErrMissingColumn, got %v", err)
		}
		if !strings.Contains(err.Error(), ColCategory) {
			t.Fatalf("error should name the column: %v", err)
		}
	})

	t.Run("bad amount", func(t *testing.T) {
		row := make([]string, len(Header))
		row[6] = "abc"
		_, err := DecodeRows([][]string{Header, row})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
		if !strings.Contains(err.Error(), "row 2") {
			t.Fatalf("error should name the row: %v", err)
		}
	})
}

func TestDecodeRowsEmpty(t *testing.T) {
	got, err := DecodeRows(nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestEncodeRowRoundTrip(t *testing.T) {
	tx := core.Transaction{
		OperationDate:   "01.12.2024 10:00:00",
		PaymentDate:     "01.12.2024",
		CardNumber:      "*1234",
		Status:          "OK",
		PaymentAmount:   -1234.5,
		PaymentCurrency: "USD",
		Cashback:        12,
		Category:        "Переводы",
		Description:     "Константин Л.",
	}
	got, err := DecodeRows([][]string{Header, EncodeRow(tx)})
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if !reflect.DeepEqual(got, []core.Transaction{tx}) {
		t.Fatalf("got %+v", got)
	}
}

type failingReader struct{}

func (failingReader) ReadTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("file not found")
}

func TestLoadReturnsEmptyOnError(t *testing.T) {
	got := Load(context.Background(), failingReader{}, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}
