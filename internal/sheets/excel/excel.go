// Package excel reads bank exports from xlsx workbooks.
package excel

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"finreport/internal/core"
	"finreport/internal/log"
	ports "finreport/internal/sheets"
)

type Reader struct {
	path   string
	sheet  string
	logger *log.Logger
}

var _ ports.TransactionReader = (*Reader)(nil)

// New creates a reader for the workbook at path. An empty sheet selects the
// first sheet of the workbook.
func New(path, sheet string, logger *log.Logger) *Reader {
	return &Reader{
		path:   path,
		sheet:  sheet,
		logger: log.OrDiscard(logger).WithComponent(log.ComponentSheets),
	}
}

// ReadTransactions decodes every data row of the sheet.
func (r *Reader) ReadTransactions(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.WarnContext(ctx, "Failed to close workbook", log.FieldFile, r.path, log.FieldError, err)
		}
	}()

	sheet := r.sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	// Number formats such as "#,##0.00" would leak into formatted amounts.
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	withRawAmounts(rows, raw)

	txs, err := ports.DecodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}

	r.logger.InfoContext(ctx, "Workbook loaded",
		log.FieldFile, r.path,
		log.FieldRows, len(txs))
	return txs, nil
}

// withRawAmounts replaces the amount cells of rows with their unformatted
// values from raw. Text columns keep their displayed form.
func withRawAmounts(rows, raw [][]string) {
	if len(rows) == 0 {
		return
	}
	var cols []int
	for i, h := range rows[0] {
		if ports.IsAmountColumn(h) {
			cols = append(cols, i)
		}
	}
	for i := 1; i < len(rows) && i < len(raw); i++ {
		for _, c := range cols {
			if c < len(rows[i]) && c < len(raw[i]) {
				rows[i][c] = raw[i][c]
			}
		}
	}
}

// Write stores txs as a workbook with the export header. It produces files
// Reader can load and is used for fixtures and exports.
func Write(path string, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, ports.Header); err != nil {
		return err
	}
	for i, tx := range txs {
		if err := setRow(f, sheet, i+2, ports.EncodeRow(tx)); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
