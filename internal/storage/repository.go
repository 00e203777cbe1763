package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/sheets"

	_ "modernc.org/sqlite"
)

// ErrNoImport is returned when the snapshot has never been filled.
var ErrNoImport = errors.New("no import recorded")

// Import describes the most recent snapshot import.
type Import struct {
	ID         string
	Source     string
	Rows       int
	ImportedAt time.Time
}

// SQLiteRepository stores a snapshot of the bank export.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	source  string
	logger  *log.Logger
}

var (
	_ sheets.TransactionReader = (*SQLiteRepository)(nil)
	_ sheets.TransactionWriter = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  log.OrDiscard(logger).WithComponent(log.ComponentStorage),
	}, nil
}

// SetSource names where the next saved snapshot came from.
func (r *SQLiteRepository) SetSource(source string) {
	r.source = source
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReadTransactions implements sheets.TransactionReader
func (r *SQLiteRepository) ReadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Transaction{
			OperationDate:     row.OperationDate,
			PaymentDate:       row.PaymentDate,
			CardNumber:        row.CardNumber,
			Status:            row.Status,
			OperationAmount:   row.OperationAmount,
			OperationCurrency: row.OperationCurrency,
			PaymentAmount:     row.PaymentAmount,
			PaymentCurrency:   row.PaymentCurrency,
			Cashback:          row.Cashback,
			Category:          row.Category,
			MCC:               row.Mcc,
			Description:       row.Description,
			Bonuses:           row.Bonuses,
			InvestRounding:    row.InvestRounding,
			RoundedAmount:     row.RoundedAmount,
		})
	}
	return out, nil
}

// SaveTransactions implements sheets.TransactionWriter. The previous
// snapshot is replaced in a single database transaction and the import is
// recorded.
func (r *SQLiteRepository) SaveTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteTransactions(ctx); err != nil {
		return 0, fmt.Errorf("clear snapshot: %w", err)
	}
	for i, t := range txs {
		if err := q.InsertTransaction(ctx, TransactionRow{
			OperationDate:     t.OperationDate,
			PaymentDate:       t.PaymentDate,
			CardNumber:        t.CardNumber,
			Status:            t.Status,
			OperationAmount:   t.OperationAmount,
			OperationCurrency: t.OperationCurrency,
			PaymentAmount:     t.PaymentAmount,
			PaymentCurrency:   t.PaymentCurrency,
			Cashback:          t.Cashback,
			Category:          t.Category,
			Mcc:               t.MCC,
			Description:       t.Description,
			Bonuses:           t.Bonuses,
			InvestRounding:    t.InvestRounding,
			RoundedAmount:     t.RoundedAmount,
		}); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	id := uuid.NewString()
	if err := q.CreateImport(ctx, ImportRow{
		ID:         id,
		Source:     r.source,
		RowCount:   int64(len(txs)),
		ImportedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return 0, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	r.logger.InfoContext(ctx, "Snapshot saved",
		"import_id", id,
		log.FieldRows, len(txs))
	return len(txs), nil
}

// LastImport returns the most recent import, or ErrNoImport.
func (r *SQLiteRepository) LastImport(ctx context.Context) (Import, error) {
	row, err := r.queries.LastImport(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, ErrNoImport
	}
	if err != nil {
		return Import{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, row.ImportedAt)
	if err != nil {
		return Import{}, fmt.Errorf("parse import time %q: %w", row.ImportedAt, err)
	}
	return Import{
		ID:         row.ID,
		Source:     row.Source,
		Rows:       int(row.RowCount),
		ImportedAt: at,
	}, nil
}
