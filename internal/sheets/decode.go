package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"finreport/internal/core"
)

// Column headers of the bank export.
const (
	ColOperationDate     = "Дата операции"
	ColPaymentDate       = "Дата платежа"
	ColCardNumber        = "Номер карты"
	ColStatus            = "Статус"
	ColOperationAmount   = "Сумма операции"
	ColOperationCurrency = "Валюта операции"
	ColPaymentAmount     = "Сумма платежа"
	ColPaymentCurrency   = "Валюта платежа"
	ColCashback          = "Кэшбэк"
	ColCategory          = "Категория"
	ColMCC               = "MCC"
	ColDescription       = "Описание"
	ColBonuses           = "Бонусы (включая кэшбэк)"
	ColInvestRounding    = "Округление на инвесткопилку"
	ColRoundedAmount     = "Сумма операции с округлением"
)

// Header lists every column in export order.
var Header = []string{
	ColOperationDate,
	ColPaymentDate,
	ColCardNumber,
	ColStatus,
	ColOperationAmount,
	ColOperationCurrency,
	ColPaymentAmount,
	ColPaymentCurrency,
	ColCashback,
	ColCategory,
	ColMCC,
	ColDescription,
	ColBonuses,
	ColInvestRounding,
	ColRoundedAmount,
}

// requiredColumns are the columns reports read. The rest default to empty.
var requiredColumns = []string{
	ColPaymentDate,
	ColCardNumber,
	ColStatus,
	ColPaymentAmount,
	ColPaymentCurrency,
	ColCategory,
	ColDescription,
}

// amountColumns are the numeric columns of the export.
var amountColumns = map[string]bool{
	ColOperationAmount: true,
	ColPaymentAmount:   true,
	ColCashback:        true,
	ColBonuses:         true,
	ColInvestRounding:  true,
	ColRoundedAmount:   true,
}

// IsAmountColumn reports whether header names a numeric column.
func IsAmountColumn(header string) bool {
	return amountColumns[normalizeHeader(header)]
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

// DecodeRows maps a header row followed by data rows onto transactions.
// Columns are located by header name, so their order does not matter.
// Short rows are padded with empty cells and empty numeric cells read as 0.
// Fully blank rows are dropped.
func DecodeRows(rows [][]string) ([]core.Transaction, error) {
	if len(rows) == 0 {
		return []core.Transaction{}, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = normalizeHeader(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, strings.Join(missing, ", "))
	}

	out := make([]core.Transaction, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		d := rowDecoder{row: row, idx: idx}
		tx := core.Transaction{
			OperationDate:     d.text(ColOperationDate),
			PaymentDate:       d.text(ColPaymentDate),
			CardNumber:        d.text(ColCardNumber),
			Status:            d.text(ColStatus),
			OperationAmount:   d.amount(ColOperationAmount),
			OperationCurrency: d.text(ColOperationCurrency),
			PaymentAmount:     d.amount(ColPaymentAmount),
			PaymentCurrency:   d.text(ColPaymentCurrency),
			Cashback:          d.amount(ColCashback),
			Category:          d.text(ColCategory),
			MCC:               d.text(ColMCC),
			Description:       d.text(ColDescription),
			Bonuses:           d.amount(ColBonuses),
			InvestRounding:    d.amount(ColInvestRounding),
			RoundedAmount:     d.amount(ColRoundedAmount),
		}
		if d.err != nil {
			// +2: one for the header, one for 1-based row numbers.
			return nil, fmt.Errorf("row %d: %w", n+2, d.err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// EncodeRow is the inverse of DecodeRows for one transaction, in Header order.
func EncodeRow(tx core.Transaction) []string {
	return []string{
		tx.OperationDate,
		tx.PaymentDate,
		tx.CardNumber,
		tx.Status,
		formatAmount(tx.OperationAmount),
		tx.OperationCurrency,
		formatAmount(tx.PaymentAmount),
		tx.PaymentCurrency,
		formatAmount(tx.Cashback),
		tx.Category,
		tx.MCC,
		tx.Description,
		formatAmount(tx.Bonuses),
		formatAmount(tx.InvestRounding),
		formatAmount(tx.RoundedAmount),
	}
}

type rowDecoder struct {
	row []string
	idx map[string]int
	err error
}

func (d *rowDecoder) text(col string) string {
	i, ok := d.idx[col]
	if !ok || i >= len(d.row) {
		return ""
	}
	return strings.TrimSpace(d.row[i])
}

// amount keeps the first parse error and returns 0 for every call after it.
func (d *rowDecoder) amount(col string) float64 {
	if d.err != nil {
		return 0
	}
	v, err := core.ParseAmount(d.text(col))
	if err != nil {
		d.err = fmt.Errorf("%s: %w", col, err)
		return 0
	}
	return v
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
