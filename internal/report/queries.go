package report

import (
	"context"
	"regexp"
	"time"

	"finreport/internal/core"
	"finreport/internal/filter"
	"finreport/internal/log"
)

// CategoryMonths is the length of the category report window.
const CategoryMonths = 3

// transferPattern matches a first name followed by an initial, as the bank
// renders person-to-person transfer recipients ("Константин Л.").
var transferPattern = regexp.MustCompile(`[А-ЯЁA-Z][а-яёa-z]* [А-ЯЁA-Z]\.`)

// Queries selects transactions for the file reports.
type Queries struct {
	now    func() time.Time
	logger *log.Logger
}

func NewQueries(logger *log.Logger) *Queries {
	return &Queries{
		now:    time.Now,
		logger: log.OrDiscard(logger).WithComponent(log.ComponentReport),
	}
}

// SpendingByCategory returns the successful debits of category over the
// three months ending at date (DD.MM.YYYY). An empty or unparsable date
// falls back to today.
func (q *Queries) SpendingByCategory(ctx context.Context, txs []core.Transaction, category, date string) []core.Transaction {
	ref, err := core.ParseDate(date)
	if err != nil {
		ref = core.Day(q.now())
		q.logger.WarnContext(ctx, "Using today as report date",
			log.FieldReport, "spending_by_category",
			log.FieldDate, date,
			log.FieldError, err)
	}

	window := filter.MonthsBackWindow(ref, CategoryMonths)
	out, err := filter.Apply(txs, filter.Criteria{
		Window:     &window,
		Category:   category,
		DebitsOnly: true,
	})
	if err != nil {
		q.logger.Failure(ctx, "Category report failed", err, log.OpFilter, log.ErrorTypeValidation,
			log.NewFields().WithReport("spending_by_category").With(log.FieldCategory, category))
		return []core.Transaction{}
	}

	q.logger.InfoContext(ctx, "Category report built",
		log.FieldCategory, category,
		log.FieldDate, core.FormatDate(ref),
		log.FieldRows, len(out))
	return out
}

// SearchTransfers returns successful outgoing transfers to individuals.
// There is no date window.
func (q *Queries) SearchTransfers(ctx context.Context, txs []core.Transaction) []core.Transaction {
	if len(txs) == 0 {
		q.logger.InfoContext(ctx, "No transactions to search", log.FieldReport, "transfers")
		return []core.Transaction{}
	}

	out, err := filter.Apply(txs, filter.Criteria{
		Category:    core.CategoryTransfers,
		DebitsOnly:  true,
		Description: transferPattern,
	})
	if err != nil {
		q.logger.Failure(ctx, "Transfer search failed", err, log.OpFilter, log.ErrorTypeInternal,
			log.NewFields().WithReport("transfers"))
		return []core.Transaction{}
	}
	if len(out) == 0 {
		q.logger.InfoContext(ctx, "No transfers to individuals found", log.FieldReport, "transfers")
	}
	return out
}
