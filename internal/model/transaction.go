package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the direction of money movement for a statement transaction.
type Kind string

const (
	KindCredit Kind = "CREDIT"
	KindDebit  Kind = "DEBIT"
)

// Source labels attached by the extractors.
const (
	SourceBank       = "Bank"
	SourceCreditCard = "Credit Card"
	SourceWallet     = "UPI Wallet"
)

// Transaction is one record extracted from a statement document.
// Amount is always positive; the sign lives in Kind.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Kind        Kind
	Source      string
	Document    string // path of the originating document
}
