package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// TransactionRow is one stored transaction.
type TransactionRow struct {
	ID                int64
	OperationDate     string
	PaymentDate       string
	CardNumber        string
	Status            string
	OperationAmount   float64
	OperationCurrency string
	PaymentAmount     float64
	PaymentCurrency   string
	Cashback          float64
	Category          string
	Mcc               string
	Description       string
	Bonuses           float64
	InvestRounding    float64
	RoundedAmount     float64
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, operation_date, payment_date, card_number, status,
       operation_amount, operation_currency, payment_amount, payment_currency,
       cashback, category, mcc, description, bonuses, invest_rounding, rounded_amount
FROM transactions
ORDER BY id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.OperationDate,
			&i.PaymentDate,
			&i.CardNumber,
			&i.Status,
			&i.OperationAmount,
			&i.OperationCurrency,
			&i.PaymentAmount,
			&i.PaymentCurrency,
			&i.Cashback,
			&i.Category,
			&i.Mcc,
			&i.Description,
			&i.Bonuses,
			&i.InvestRounding,
			&i.RoundedAmount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertTransaction = `-- name: InsertTransaction :exec
INSERT INTO transactions (
    operation_date, payment_date, card_number, status,
    operation_amount, operation_currency, payment_amount, payment_currency,
    cashback, category, mcc, description, bonuses, invest_rounding, rounded_amount
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertTransaction(ctx context.Context, arg TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.OperationDate,
		arg.PaymentDate,
		arg.CardNumber,
		arg.Status,
		arg.OperationAmount,
		arg.OperationCurrency,
		arg.PaymentAmount,
		arg.PaymentCurrency,
		arg.Cashback,
		arg.Category,
		arg.Mcc,
		arg.Description,
		arg.Bonuses,
		arg.InvestRounding,
		arg.RoundedAmount,
	)
	return err
}

const deleteTransactions = `-- name: DeleteTransactions :exec
DELETE FROM transactions
`

func (q *Queries) DeleteTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteTransactions)
	return err
}

// ImportRow records one snapshot import.
type ImportRow struct {
	ID         string
	Source     string
	RowCount   int64
	ImportedAt string
}

const createImport = `-- name: CreateImport :exec
INSERT INTO imports (id, source, row_count, imported_at) VALUES (?, ?, ?, ?)
`

func (q *Queries) CreateImport(ctx context.Context, arg ImportRow) error {
	_, err := q.db.ExecContext(ctx, createImport, arg.ID, arg.Source, arg.RowCount, arg.ImportedAt)
	return err
}

const lastImport = `-- name: LastImport :one
SELECT id, source, row_count, imported_at FROM imports
ORDER BY imported_at DESC, rowid DESC
LIMIT 1
`

func (q *Queries) LastImport(ctx context.Context) (ImportRow, error) {
	row := q.db.QueryRowContext(ctx, lastImport)
	var i ImportRow
	err := row.Scan(&i.ID, &i.Source, &i.RowCount, &i.ImportedAt)
	if err != nil {
		return ImportRow{}, fmt.Errorf("last import: %w", err)
	}
	return i, nil
}
