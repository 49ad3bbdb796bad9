package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is a single row of the master ledger.
type LedgerRow struct {
	Date        time.Time //nolint:revive // plain field name is clearest
	Description string    // "Transaction made at" column
	Amount      decimal.Decimal
	Category    string
	Source      string
	Hash        string
}

// StagedRecord is a ledger row produced by a scan that has not been committed yet.
type StagedRecord struct {
	LedgerRow
	Document string
}
