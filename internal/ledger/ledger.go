// Package ledger persists the master ledger: one row per accepted debit,
// stored either as CSV or as an .xlsx workbook.
package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

// Column names, in file order.
const (
	ColDate        = "Date"
	ColDescription = "Transaction made at"
	ColAmount      = "Amount"
	ColCategory    = "Category"
	ColSource      = "Source"
	ColHash        = "Hash"
)

// Columns is the header written by every store.
var Columns = []string{ColDate, ColDescription, ColAmount, ColCategory, ColSource, ColHash}

// legacyDescription is accepted on read as an alias for ColDescription.
const legacyDescription = "Description"

// ErrCorrupt marks a ledger file that exists but cannot be decoded.
var ErrCorrupt = errors.New("ledger corrupt")

// Store reads and overwrites the whole ledger.
type Store interface {
	// Load returns all rows. A missing file is an empty ledger.
	Load() ([]model.LedgerRow, error)
	// Save replaces the ledger with rows.
	Save(rows []model.LedgerRow) error
	Path() string
}

// Open returns the store for path, chosen by extension: .csv selects
// CSVStore, anything else XLSXStore.
func Open(path string) Store {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return &CSVStore{path: path}
	}
	return &XLSXStore{path: path}
}

// Hashes returns the non-empty hashes of rows.
func Hashes(rows []model.LedgerRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Hash != "" {
			out = append(out, r.Hash)
		}
	}
	return out
}

// writeAtomic writes through a temp file in the target directory and renames
// it over path, so readers never see a partial ledger.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

// Snapshot holds the raw bytes of a ledger file so a failed commit can put
// it back exactly as it was.
type Snapshot struct {
	path    string
	data    []byte
	existed bool
}

// TakeSnapshot captures the current content of the file at path.
func TakeSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Snapshot{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshotting ledger: %w", err)
	}
	return &Snapshot{path: path, data: data, existed: true}, nil
}

// Restore writes the captured content back, or removes the file if there
// was none.
func (s *Snapshot) Restore() error {
	if !s.existed {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing ledger: %w", err)
		}
		return nil
	}
	return writeAtomic(s.path, func(w io.Writer) error {
		_, err := w.Write(s.data)
		return err
	})
}
