package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountCandidate is a token that parsed as a monetary amount.
type AmountCandidate struct {
	Value           decimal.Decimal
	Token           string // original token
	Index           int    // token or column index within the line/row
	DistanceFromEnd int    // 1 = last token of the line
	CreditSuffix    bool
	DebitSuffix     bool
}

// AmountRules selects the issuer-specific parts of amount classification.
type AmountRules struct {
	// BareSuffix also strips single-letter c/d markers ("36,089.00C").
	BareSuffix bool
	// RejectYears drops plain integers in (1900, 2100).
	RejectYears bool
	// RejectReferences drops integer-valued tokens above 10000 written
	// without a decimal point (pincodes, reference numbers).
	RejectReferences bool
}

// BankRules is used by the bank statement extractor.
var BankRules = AmountRules{RejectYears: true, RejectReferences: true}

var (
	numberPattern   = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
	plainIntPattern = regexp.MustCompile(`^\d+$`)

	yearFloor      = decimal.NewFromInt(1900)
	yearCeiling    = decimal.NewFromInt(2100)
	referenceFloor = decimal.NewFromInt(10000)
)

var currencyMarks = []string{"₹", "Rs.", "Rs", "INR", "$", "£", "€", "\u00a0"}

// StripCurrency removes currency symbols and non-breaking spaces from a token.
func StripCurrency(s string) string {
	for _, m := range currencyMarks {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}

// ParseAmount classifies a single token. It strips thousands separators and a
// trailing cr/dr marker (or c/d when rules.BareSuffix is set), parses the number
// and applies the year/reference rejections.
func ParseAmount(token string, rules AmountRules) (AmountCandidate, bool) {
	raw := strings.TrimSpace(token)
	clean := strings.ToLower(strings.ReplaceAll(StripCurrency(raw), ",", ""))

	c := AmountCandidate{Token: raw}
	switch {
	case strings.HasSuffix(clean, "cr"):
		c.CreditSuffix = true
		clean = strings.TrimSuffix(clean, "cr")
	case strings.HasSuffix(clean, "dr"):
		c.DebitSuffix = true
		clean = strings.TrimSuffix(clean, "dr")
	case rules.BareSuffix && strings.HasSuffix(clean, "c"):
		c.CreditSuffix = true
		clean = strings.TrimSuffix(clean, "c")
	case rules.BareSuffix && strings.HasSuffix(clean, "d"):
		c.DebitSuffix = true
		clean = strings.TrimSuffix(clean, "d")
	}
	clean = strings.TrimSpace(clean)

	if !numberPattern.MatchString(clean) {
		return AmountCandidate{}, false
	}
	v, err := decimal.NewFromString(clean)
	if err != nil {
		return AmountCandidate{}, false
	}
	c.Value = v

	if rules.RejectYears && plainIntPattern.MatchString(raw) &&
		v.GreaterThan(yearFloor) && v.LessThan(yearCeiling) {
		return AmountCandidate{}, false
	}
	if rules.RejectReferences && !strings.Contains(raw, ".") &&
		v.IsInteger() && v.GreaterThan(referenceFloor) {
		return AmountCandidate{}, false
	}
	return c, true
}
