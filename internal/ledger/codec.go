package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/normalize"
)

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04:05"
)

// columnMap maps canonical column names to their index in a header row.
type columnMap map[string]int

func mapHeader(header []string) (columnMap, error) {
	m := make(columnMap, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if strings.EqualFold(name, legacyDescription) {
			name = ColDescription
		}
		for _, col := range Columns {
			if strings.EqualFold(name, col) {
				if _, dup := m[col]; !dup {
					m[col] = i
				}
			}
		}
	}
	for _, required := range []string{ColDate, ColDescription, ColAmount} {
		if _, ok := m[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrCorrupt, required)
		}
	}
	return m, nil
}

func (m columnMap) get(record []string, col string) string {
	i, ok := m[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// decodeRecords turns a header row plus data rows into ledger rows. Blank
// rows are skipped; any undecodable row makes the whole ledger corrupt.
func decodeRecords(records [][]string) ([]model.LedgerRow, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	var rows []model.LedgerRow
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row, err := decodeRow(cols, rec)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorrupt, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(cols columnMap, rec []string) (model.LedgerRow, error) {
	date, err := parseLedgerDate(cols.get(rec, ColDate))
	if err != nil {
		return model.LedgerRow{}, err
	}
	raw := cols.get(rec, ColAmount)
	amount, err := decimal.NewFromString(normalize.StripCurrency(strings.ReplaceAll(raw, ",", "")))
	if err != nil {
		return model.LedgerRow{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	return model.LedgerRow{
		Date:        date,
		Description: cols.get(rec, ColDescription),
		Amount:      amount,
		Category:    cols.get(rec, ColCategory),
		Source:      cols.get(rec, ColSource),
		Hash:        cols.get(rec, ColHash),
	}, nil
}

// parseLedgerDate reads the stored date. Older ledgers carry a time of day,
// a statement-style date, or an Excel date serial such as "45995".
func parseLedgerDate(s string) (time.Time, error) {
	for _, layout := range []string{dateFormat, dateTimeFormat} {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}
	if t, ok := normalize.ParseDate(s); ok {
		return t, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing date serial %q: %w", s, err)
		}
		return dateOnly(t), nil
	}
	return time.Time{}, fmt.Errorf("parsing date %q", s)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func encodeRow(r model.LedgerRow) []string {
	return []string{
		r.Date.Format(dateFormat),
		r.Description,
		r.Amount.StringFixed(2),
		r.Category,
		r.Source,
		r.Hash,
	}
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
