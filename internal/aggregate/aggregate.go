// Package aggregate sums converted transactions per card and ranks the
// largest ones.
//
// Rows that cannot be converted into the reporting currency are left out of
// every sum and ranking. They are counted and logged, never fatal.
package aggregate

import (
	"context"
	"math"
	"sort"

	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/rates"
)

// TopCount is how many transactions the home page lists.
const TopCount = 5

type Aggregator struct {
	exchanger rates.Exchanger
	logger    *log.Logger
}

// New creates an aggregator converting through exchanger.
func New(exchanger rates.Exchanger, logger *log.Logger) *Aggregator {
	return &Aggregator{
		exchanger: exchanger,
		logger:    log.OrDiscard(logger).WithComponent(log.ComponentAggregate),
	}
}

type cardTotals struct {
	card     string
	spent    float64
	cashback float64
	skipped  int
}

// CardSummaries groups the debit rows of txs by card and sums their
// converted payment amount and cashback. Cards keep the order in which they
// are first seen; rows without a card number are ignored. Spend is reported
// as a positive magnitude. Credits never contribute, so it cannot go
// negative.
func (a *Aggregator) CardSummaries(ctx context.Context, txs []core.Transaction) []core.CardSummary {
	var order []string
	groups := make(map[string]*cardTotals)

	for _, tx := range txs {
		if tx.CardNumber == "" || !tx.IsDebit() {
			continue
		}
		g, ok := groups[tx.CardNumber]
		if !ok {
			g = &cardTotals{card: tx.CardNumber}
			groups[tx.CardNumber] = g
			order = append(order, tx.CardNumber)
		}

		skipped := false
		spent, err := a.exchanger.Exchange(ctx, tx.PaymentAmount, tx.PaymentCurrency, tx.PaymentDate)
		if err != nil {
			skipped = true
		} else {
			g.spent += spent
		}

		if tx.Cashback != 0 {
			cashback, err := a.exchanger.Exchange(ctx, tx.Cashback, tx.PaymentCurrency, tx.PaymentDate)
			if err != nil {
				skipped = true
			} else {
				g.cashback += cashback
			}
		}

		if skipped {
			g.skipped++
			a.logger.WarnContext(ctx, "Row left out of card totals",
				log.FieldCard, core.MaskCard(tx.CardNumber),
				log.FieldCurrency, tx.PaymentCurrency,
				log.FieldDate, tx.PaymentDate)
		}
	}

	out := make([]core.CardSummary, 0, len(order))
	for _, card := range order {
		g := groups[card]
		out = append(out, core.CardSummary{
			LastDigits: core.MaskCard(g.card),
			TotalSpent: core.Round2(0 - g.spent),
			Cashback:   core.Round2(g.cashback),
			Skipped:    g.skipped,
		})
	}
	return out
}

// Top returns the n transactions with the largest converted magnitude,
// credits and debits alike. Ties keep their input order. The converted value
// is only the sort key: results carry the original amount and date.
func (a *Aggregator) Top(ctx context.Context, txs []core.Transaction, n int) []core.TopTransaction {
	type ranked struct {
		tx  core.Transaction
		key float64
	}

	rows := make([]ranked, 0, len(txs))
	skipped := 0
	for _, tx := range txs {
		v, err := a.exchanger.Exchange(ctx, tx.PaymentAmount, tx.PaymentCurrency, tx.PaymentDate)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, ranked{tx: tx, key: math.Abs(v)})
	}
	if skipped > 0 {
		a.logger.WarnContext(ctx, "Rows left out of top transactions", log.FieldSkipped, skipped)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].key > rows[j].key
	})

	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}

	out := make([]core.TopTransaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.TopTransaction{
			Date:        r.tx.PaymentDate,
			Amount:      r.tx.PaymentAmount,
			Category:    r.tx.Category,
			Description: r.tx.Description,
		})
	}
	return out
}
