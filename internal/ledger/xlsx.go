package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/tally/internal/model"
)

// SheetName is the worksheet written by XLSXStore.
const SheetName = "Ledger"

// XLSXStore keeps the ledger in the first worksheet of an .xlsx workbook.
type XLSXStore struct {
	path string
}

// NewXLSXStore creates a store for the workbook at path.
func NewXLSXStore(path string) *XLSXStore { return &XLSXStore{path: path} }

// Path implements Store.
func (s *XLSXStore) Path() string { return s.path }

// Load implements Store. Date cells written as Excel dates come back as
// serial numbers and are converted by the row decoder.
func (s *XLSXStore) Load() ([]model.LedgerRow, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrCorrupt, s.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorrupt, s.path, err)
	}
	return decodeRecords(records)
}

// Save implements Store.
func (s *XLSXStore) Save(rows []model.LedgerRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.Date.Format(dateFormat),
			r.Description,
			r.Amount.Round(2).InexactFloat64(),
			r.Category,
			r.Source,
			r.Hash,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	return writeAtomic(s.path, func(w io.Writer) error {
		if err := f.Write(w); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
		return nil
	})
}
