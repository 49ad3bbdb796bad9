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

// BankExtractor reads savings/current account statements.
//
// Each page is read from its tables first. A page whose tables yield no
// transactions is read again from its text lines. The running balance
// carries across pages; the lookback buffer does not.
type BankExtractor struct {
	trace Trace
}

var (
	// Balance deltas within these bands decide credit vs debit.
	tableTolerance = decimal.NewFromInt(1)
	textTolerance  = decimal.NewFromFloat(0.1)

	// A lone table value this close to the running balance restates it.
	restatementRatio = decimal.NewFromFloat(0.1)

	cellDatePattern = regexp.MustCompile(`\d{2}[/-]\d{2}[/-]\d{4}`)
)

// maxTextCandidates is how many trailing tokens of a text line can hold amounts.
const maxTextCandidates = 4

// Source implements Extractor.
func (e *BankExtractor) Source() string { return model.SourceBank }

// Trace implements Extractor.
func (e *BankExtractor) Trace() []string { return e.trace.Entries() }

// Extract implements Extractor.
func (e *BankExtractor) Extract(doc *document.Document) []model.Transaction {
	s := &bankSession{trace: &e.trace, path: doc.Path}

	var txns []model.Transaction
	for i, page := range doc.Pages {
		e.trace.Addf("page %d: %d table(s)", i+1, len(page.Tables))

		pageTxns := s.readTables(page.Tables)
		if len(pageTxns) == 0 {
			pageTxns = s.readLines(page.Lines())
		}
		txns = append(txns, pageTxns...)
	}
	return txns
}

// bankSession is the mutable state of one document's extraction.
type bankSession struct {
	trace *Trace
	path  string

	prevBalance decimal.Decimal
	hasBalance  bool
	lookback    string
}

func (s *bankSession) setBalance(v decimal.Decimal) {
	s.prevBalance = v
	s.hasBalance = true
}

// balanceKind infers the direction of amount from the balance movement.
func (s *bankSession) balanceKind(current, amount, tolerance decimal.Decimal) (model.Kind, bool) {
	if !s.hasBalance {
		return "", false
	}
	delta := current.Sub(s.prevBalance)
	if delta.Sub(amount).Abs().LessThan(tolerance) {
		return model.KindCredit, true
	}
	if delta.Add(amount).Abs().LessThan(tolerance) {
		return model.KindDebit, true
	}
	return "", false
}

func (s *bankSession) emit(date time.Time, desc string, amount decimal.Decimal, kind model.Kind) model.Transaction {
	return model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Kind:        kind,
		Source:      model.SourceBank,
		Document:    s.path,
	}
}

func (s *bankSession) readTables(tables []document.Table) []model.Transaction {
	var txns []model.Transaction
	for _, table := range tables {
		for _, row := range table {
			if txn, ok := s.tableRow(row); ok {
				txns = append(txns, txn)
			}
		}
	}
	return txns
}

func (s *bankSession) tableRow(row []string) (model.Transaction, bool) {
	if len(row) < 3 {
		return model.Transaction{}, false
	}
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = strings.TrimSpace(c)
	}
	s.trace.Addf("row: %q", cells)

	date, dateIdx, dateText, ok := tableDate(cells)
	if !ok {
		s.trace.Addf("  skipped (no date)")
		return model.Transaction{}, false
	}

	var cands []normalize.AmountCandidate
	for i := dateIdx + 1; i < len(cells); i++ {
		if cells[i] == "" {
			continue
		}
		if c, ok := normalize.ParseAmount(cells[i], normalize.BankRules); ok {
			c.Index = i
			c.DistanceFromEnd = len(cells) - i
			cands = append(cands, c)
		}
	}

	var amount normalize.AmountCandidate
	kind := model.KindDebit

	switch len(cands) {
	case 0:
		s.trace.Addf("  skipped (no amounts)")
		return model.Transaction{}, false
	case 1:
		c := cands[0]
		if isBroughtForward(strings.Join(cells, " ")) {
			s.setBalance(c.Value)
			s.trace.Addf("  opening balance %s", c.Value)
			return model.Transaction{}, false
		}
		if s.hasBalance && c.Value.Sub(s.prevBalance).Abs().LessThan(c.Value.Mul(restatementRatio)) {
			s.setBalance(c.Value)
			s.trace.Addf("  balance restatement %s", c.Value)
			return model.Transaction{}, false
		}
		amount = c
		if k, ok := rowMarkerKind(c, cells); ok {
			kind = k
		}
	default:
		balance := cands[len(cands)-1]
		amount = cands[len(cands)-2]
		if k, ok := s.balanceKind(balance.Value, amount.Value, tableTolerance); ok {
			kind = k
		} else if k, ok := rowMarkerKind(amount, cells); ok {
			kind = k
		}
		s.setBalance(balance.Value)
	}

	if !amount.Value.IsPositive() {
		s.trace.Addf("  skipped (amount %s)", amount.Value)
		return model.Transaction{}, false
	}

	var parts []string
	if leftover := strings.TrimSpace(strings.Replace(cells[dateIdx], dateText, "", 1)); leftover != "" {
		parts = append(parts, leftover)
	}
	for i := dateIdx + 1; i < amount.Index; i++ {
		if cells[i] != "" {
			parts = append(parts, cells[i])
		}
	}
	raw := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	desc := CleanDescription(raw)
	s.trace.Addf("  [ACCEPTED] %s | %s | %s | %q", date.Format("2006-01-02"), amount.Value, kind, desc)

	return s.emit(date, desc, amount.Value, kind), true
}

// tableDate finds the date in cell 0 or cell 1. A cell may carry trailing
// narration after the date; dateText is the part that parsed.
func tableDate(cells []string) (time.Time, int, string, bool) {
	for i := 0; i < 2; i++ {
		cell := cells[i]
		if d, ok := normalize.ParseDate(cell); ok {
			return d, i, cell, true
		}
		if m := cellDatePattern.FindString(cell); m != "" {
			if d, ok := normalize.ParseDate(m); ok {
				return d, i, m, true
			}
		}
	}
	return time.Time{}, 0, "", false
}

// rowMarkerKind reads explicit Cr/Dr markers: the amount's own suffix, then
// any cell that is only a marker.
func rowMarkerKind(amount normalize.AmountCandidate, cells []string) (model.Kind, bool) {
	if amount.CreditSuffix {
		return model.KindCredit, true
	}
	if amount.DebitSuffix {
		return model.KindDebit, true
	}
	for _, c := range cells {
		if k, ok := markerKind(c); ok {
			return k, true
		}
	}
	return "", false
}

// markerKind recognises a detached "Cr"/"Dr" token.
func markerKind(token string) (model.Kind, bool) {
	switch strings.ToLower(strings.Trim(token, " .()")) {
	case "cr":
		return model.KindCredit, true
	case "dr":
		return model.KindDebit, true
	}
	return "", false
}

func (s *bankSession) readLines(lines []string) []model.Transaction {
	s.lookback = ""
	defer func() { s.lookback = "" }()

	var txns []model.Transaction
	for _, line := range lines {
		if txn, ok := s.textLine(line); ok {
			txns = append(txns, txn)
		}
	}
	return txns
}

func (s *bankSession) textLine(line string) (model.Transaction, bool) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return model.Transaction{}, false
	}
	joined := strings.Join(parts, " ")

	date, dateIdx, ok := tokenDate(parts)
	if !ok {
		s.lookback = joined
		return model.Transaction{}, false
	}

	var cands []normalize.AmountCandidate
	for k := 1; k <= maxTextCandidates; k++ {
		if len(parts) < k+2 {
			break
		}
		idx := len(parts) - k
		if c, ok := normalize.ParseAmount(parts[idx], normalize.BankRules); ok {
			c.Index = idx
			c.DistanceFromEnd = k
			cands = append(cands, c)
		}
	}

	broughtForward := isBroughtForward(joined)

	switch len(cands) {
	case 0:
		s.lookback = joined
		s.trace.Addf("skipped line (amount missing): %s", truncate(joined, 40))
		return model.Transaction{}, false
	case 1:
		s.setBalance(cands[0].Value)
		if broughtForward {
			s.lookback = ""
			s.trace.Addf("opening balance %s", cands[0].Value)
			return model.Transaction{}, false
		}
		s.lookback = joined
		s.trace.Addf("skipped line (single number %s treated as balance)", cands[0].Value)
		return model.Transaction{}, false
	}

	balance, amount := cands[0], cands[1]
	s.trace.Addf("amounts %s / balance %s", amount.Value, balance.Value)

	kind := model.KindDebit
	if amount.CreditSuffix {
		kind = model.KindCredit
	}
	if amount.DistanceFromEnd > 1 {
		if k, ok := markerKind(parts[amount.Index+1]); ok {
			kind = k
		}
	}
	if k, ok := s.balanceKind(balance.Value, amount.Value, textTolerance); ok {
		kind = k
	}
	s.setBalance(balance.Value)

	start := dateIdx + 1
	if start < len(parts) {
		if _, ok := normalize.ParseDate(parts[start]); ok {
			start++
		}
	}
	var desc string
	if start < amount.Index {
		desc = strings.Join(parts[start:amount.Index], " ")
	}

	if broughtForward || isBroughtForward(desc) {
		s.trace.Addf("skipped line (B/F): %s", desc)
		return model.Transaction{}, false
	}
	if !amount.Value.IsPositive() {
		s.lookback = joined
		return model.Transaction{}, false
	}

	if s.lookback != "" && !hasReferenceMarker(desc) {
		desc = strings.TrimSpace(s.lookback + " " + desc)
		s.lookback = ""
	}
	desc = CleanDescription(desc)
	s.trace.Addf("[ACCEPTED] %s | %s | %s | %q", date.Format("2006-01-02"), amount.Value, kind, desc)

	return s.emit(date, desc, amount.Value, kind), true
}

// tokenDate parses the date from token 0, else token 1.
func tokenDate(parts []string) (time.Time, int, bool) {
	for i := 0; i < 2 && i < len(parts); i++ {
		if d, ok := normalize.ParseDate(parts[i]); ok {
			return d, i, true
		}
	}
	return time.Time{}, 0, false
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
