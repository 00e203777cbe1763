package sheets

import (
	"context"

	"finreport/internal/core"
	"finreport/internal/log"
)

// Ports for outbound adapters.
type (
	// TransactionReader returns every row of a bank export.
	TransactionReader interface {
		ReadTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// TransactionWriter replaces a stored snapshot with txs.
	TransactionWriter interface {
		SaveTransactions(ctx context.Context, txs []core.Transaction) (int, error)
	}
)

// Load reads all transactions from r. A failing reader yields an empty
// slice; the error is logged and not returned.
func Load(ctx context.Context, r TransactionReader, logger *log.Logger) []core.Transaction {
	logger = log.OrDiscard(logger).WithComponent(log.ComponentSheets)

	txs, err := r.ReadTransactions(ctx)
	if err != nil {
		logger.Failure(ctx, "Failed to read transactions", err, log.OpRead, log.ErrorTypeIO, nil)
		return []core.Transaction{}
	}
	logger.DebugContext(ctx, "Transactions read", log.FieldRows, len(txs))
	return txs
}
