package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// ValidationError describes a row that may not be appended.
type ValidationError struct {
	Row         int // 1-based position within the added rows
	Hash        string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d [%s]: %s", e.Row, short(e.Hash), e.Description)
}

func short(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

var hundred = decimal.NewFromInt(100)

// Validate checks rows about to be appended to existing. Only added rows are
// checked field by field; hashes must be unique across both.
func Validate(existing, added []model.LedgerRow) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool, len(existing)+len(added))
	for _, r := range existing {
		if r.Hash != "" {
			seen[r.Hash] = true
		}
	}

	for i, r := range added {
		fail := func(format string, args ...any) {
			errs = append(errs, ValidationError{Row: i + 1, Hash: r.Hash, Description: fmt.Sprintf(format, args...)})
		}

		if r.Date.IsZero() {
			fail("missing date")
		}
		if !r.Amount.IsPositive() {
			fail("amount %s must be positive", r.Amount)
		}
		if scaled := r.Amount.Mul(hundred); !scaled.Equal(scaled.Floor()) {
			fail("amount %s has more than 2 decimal places", r.Amount)
		}
		switch {
		case r.Hash == "":
			fail("missing hash")
		case seen[r.Hash]:
			fail("duplicate hash")
		default:
			seen[r.Hash] = true
		}
	}
	return errs
}
