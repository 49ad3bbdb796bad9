package extract

import (
	"regexp"
	"strings"

	"github.com/cleared-dev/tally/internal/document"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/normalize"
)

// WalletExtractor reads UPI app statements (PhonePe, Google Pay, Paytm).
// Only lines that start with a date are considered.
type WalletExtractor struct {
	trace Trace
}

var (
	walletDate   = regexp.MustCompile(`^(\w{3}\s\d{1,2},?\s\d{4}|\d{2}/\d{2}/\d{4})`)
	walletAmount = regexp.MustCompile(`(?:Rs\.?|₹)?\s?([\d,]+\.\d{2})`)
)

// Source implements Extractor.
func (e *WalletExtractor) Source() string { return model.SourceWallet }

// Trace implements Extractor.
func (e *WalletExtractor) Trace() []string { return e.trace.Entries() }

// Extract implements Extractor.
func (e *WalletExtractor) Extract(doc *document.Document) []model.Transaction {
	var txns []model.Transaction
	for _, page := range doc.Pages {
		for _, line := range page.Lines() {
			if txn, ok := e.line(line); ok {
				txn.Document = doc.Path
				txns = append(txns, txn)
			}
		}
	}
	return txns
}

func (e *WalletExtractor) line(line string) (model.Transaction, bool) {
	line = strings.TrimSpace(line)
	dm := walletDate.FindString(line)
	if dm == "" {
		return model.Transaction{}, false
	}
	date, ok := normalize.ParseDate(dm)
	if !ok {
		e.trace.Addf("skipped (bad date %q)", dm)
		return model.Transaction{}, false
	}

	rest := line[len(dm):]
	am := walletAmount.FindStringSubmatch(rest)
	if am == nil {
		e.trace.Addf("skipped (amount missing): %s", truncate(line, 40))
		return model.Transaction{}, false
	}
	c, ok := normalize.ParseAmount(am[1], normalize.AmountRules{})
	if !ok || !c.Value.IsPositive() {
		e.trace.Addf("skipped (amount %q)", am[1])
		return model.Transaction{}, false
	}

	kind := model.KindDebit
	if strings.Contains(line, "Received from") || strings.Contains(line, "Credit") {
		kind = model.KindCredit
	}

	desc := strings.TrimSpace(strings.Replace(rest, am[0], "", 1))
	desc = CleanDescription(strings.Join(strings.Fields(desc), " "))
	e.trace.Addf("[ACCEPTED] %s | %s | %s | %q", date.Format("2006-01-02"), c.Value, kind, desc)

	return model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      c.Value,
		Kind:        kind,
		Source:      model.SourceWallet,
	}, true
}
