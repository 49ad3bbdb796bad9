package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/document"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/normalize"
)

// CreditCardExtractor reads card statements, which put the date first,
// sometimes behind a row index, and mark credits with a trailing C or Cr.
type CreditCardExtractor struct {
	trace Trace
}

// cardRules strips single-letter c/d markers. Year and pincode checks are
// done by the extractor on whole tokens instead.
var cardRules = normalize.AmountRules{BareSuffix: true}

var (
	pincodePattern = regexp.MustCompile(`^\d{4,}$`)

	cardYearLow  = decimal.NewFromInt(2000)
	cardYearHigh = decimal.NewFromInt(2030)
)

const maxCardCandidates = 3

// Source implements Extractor.
func (e *CreditCardExtractor) Source() string { return model.SourceCreditCard }

// Trace implements Extractor.
func (e *CreditCardExtractor) Trace() []string { return e.trace.Entries() }

// Extract implements Extractor.
func (e *CreditCardExtractor) Extract(doc *document.Document) []model.Transaction {
	var txns []model.Transaction
	for i, page := range doc.Pages {
		e.trace.Addf("page %d", i+1)
		for _, line := range page.Lines() {
			if txn, ok := e.line(line); ok {
				txn.Document = doc.Path
				txns = append(txns, txn)
			}
		}
	}
	return txns
}

func (e *CreditCardExtractor) line(line string) (model.Transaction, bool) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return model.Transaction{}, false
	}

	date, start, ok := cardDate(parts)
	if !ok {
		return model.Transaction{}, false
	}

	for i := 1; i <= maxCardCandidates; i++ {
		if len(parts) < i+start {
			break
		}
		idx := len(parts) - i
		tok := parts[idx]
		if pincodePattern.MatchString(tok) {
			continue
		}
		c, ok := normalize.ParseAmount(tok, cardRules)
		if !ok {
			continue
		}
		if c.Value.IsInteger() && !c.Value.LessThan(cardYearLow) && !c.Value.GreaterThan(cardYearHigh) {
			continue
		}

		kind := model.KindDebit
		if c.CreditSuffix {
			kind = model.KindCredit
		}
		if i > 1 {
			if k, ok := cardMarkerKind(parts[idx+1]); ok {
				kind = k
			}
		}

		if idx <= start {
			continue
		}
		desc := strings.TrimSpace(strings.Join(parts[start:idx], " "))
		if desc == "" {
			continue
		}
		if !c.Value.IsPositive() {
			e.trace.Addf("skipped (amount %s): %s", c.Value, truncate(line, 40))
			return model.Transaction{}, false
		}

		desc = CleanDescription(desc)
		e.trace.Addf("[ACCEPTED] %s | %s | %s | %q", date.Format("2006-01-02"), c.Value, kind, desc)
		return model.Transaction{
			Date:        date,
			Description: desc,
			Amount:      c.Value,
			Kind:        kind,
			Source:      model.SourceCreditCard,
		}, true
	}

	e.trace.Addf("skipped (amount missing): %s", truncate(line, 40))
	return model.Transaction{}, false
}

// cardMarkerKind reads a detached marker token. It wins over a suffix on the
// amount itself.
func cardMarkerKind(token string) (model.Kind, bool) {
	switch strings.ToLower(strings.Trim(token, " .()")) {
	case "c", "cr":
		return model.KindCredit, true
	case "d", "dr":
		return model.KindDebit, true
	}
	return "", false
}

// cardDate returns the date and the index of the first description token.
// It tries a single token at 0 and 1, then "DD MMM YY" spread over three
// tokens at 0 and 1.
func cardDate(parts []string) (time.Time, int, bool) {
	for i := 0; i < 2 && i < len(parts); i++ {
		if d, ok := normalize.ParseDate(parts[i]); ok {
			return d, i + 1, true
		}
	}
	for i := 0; i < 2 && i+3 <= len(parts); i++ {
		if d, ok := normalize.ParseDate(strings.Join(parts[i:i+3], " ")); ok {
			return d, i + 3, true
		}
	}
	return time.Time{}, 0, false
}
