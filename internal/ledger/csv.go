package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cleared-dev/tally/internal/model"
)

// CSVStore keeps the ledger in a CSV file with a header row.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore { return &CSVStore{path: path} }

func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) Load() ([]model.LedgerRow, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", s.path, err)
	}
	return rows, nil
}

func (s *CSVStore) Save(rows []model.LedgerRow) error {
	return writeAtomic(s.path, func(w io.Writer) error {
		return WriteCSV(w, rows)
	})
}

// ReadCSV decodes a ledger from r.
func ReadCSV(r io.Reader) ([]model.LedgerRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return decodeRecords(records)
}

// WriteCSV writes the header and rows to w.
func WriteCSV(w io.Writer, rows []model.LedgerRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(encodeRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
