package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ReportingCurrency is the currency every amount is normalized to.
	ReportingCurrency = "RUB"

	// StatusOK marks a successfully processed operation.
	StatusOK = "OK"

	// CategoryTransfers is the bank category used for person-to-person transfers.
	CategoryTransfers = "Переводы"

	// DateLayout is the bank export layout of payment dates.
	DateLayout = "02.01.2006"
	// DateTimeLayout is the bank export layout of operation dates.
	DateTimeLayout = "02.01.2006 15:04:05"
	// RequestLayout is the layout of the home page reference date.
	RequestLayout = "2006-01-02 15:04:05"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingColumn = errors.New("missing column")
)

type (
	// Transaction is one row of the bank export. Dates are kept as the
	// exported text; they are validated by whoever needs them.
	Transaction struct {
		OperationDate     string  `json:"operation_date"`
		PaymentDate       string  `json:"payment_date"`
		CardNumber        string  `json:"card_number"`
		Status            string  `json:"status"`
		OperationAmount   float64 `json:"operation_amount"`
		OperationCurrency string  `json:"operation_currency"`
		PaymentAmount     float64 `json:"payment_amount"`
		PaymentCurrency   string  `json:"payment_currency"`
		Cashback          float64 `json:"cashback"`
		Category          string  `json:"category"`
		MCC               string  `json:"MCC"`
		Description       string  `json:"description"`
		Bonuses           float64 `json:"bonus_with_cashback"`
		InvestRounding    float64 `json:"round_for_invest_monybox"`
		RoundedAmount     float64 `json:"round_amount"`
	}

	// Rates maps a currency code to its rate in the reporting currency.
	Rates map[string]float64
)

// IsDebit reports whether the payment amount leaves the account.
func (t Transaction) IsDebit() bool {
	return t.PaymentAmount < 0
}

// IsOK reports whether the operation succeeded.
func (t Transaction) IsOK() bool {
	return t.Status == StatusOK
}

// ParseDate parses a DD.MM.YYYY date. A value carrying a time of day
// (DD.MM.YYYY HH:MM:SS) is accepted and truncated to its date.
// Calendar-invalid dates such as 31.06.2000 are rejected.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	if d, err := time.Parse(DateTimeLayout, s); err == nil {
		return Day(d), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseRequestTime parses a YYYY-MM-DD HH:MM:SS reference date.
func ParseRequestTime(s string) (time.Time, error) {
	t, err := time.Parse(RequestLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders t in the bank export layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to midnight UTC of the same calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MaskCard returns the last four characters of a card number, or the whole
// value when it is shorter. Exports carry numbers like "*7197".
func MaskCard(number string) string {
	r := []rune(strings.TrimSpace(number))
	if len(r) <= 4 {
		return string(r)
	}
	return string(r[len(r)-4:])
}
