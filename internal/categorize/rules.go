// Package categorize assigns ledger categories to transaction descriptions
// from an ordered, file-backed keyword rule set.
package categorize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is a named group of lowercase keywords.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// RuleSet is the persisted form of the categorization rules. Categories are
// checked in order, except CatchAll which is always checked last.
type RuleSet struct {
	CatchAll   string     `yaml:"catch_all"`
	Categories []Category `yaml:"categories"`
}

// DefaultCatchAll names the category holding generic transfer markers.
const DefaultCatchAll = "UPI Payment"

// DefaultRules returns the rule set written on first use.
func DefaultRules() RuleSet {
	return RuleSet{
		CatchAll: DefaultCatchAll,
		Categories: []Category{
			{Name: "Food", Keywords: []string{"swiggy", "zomato", "restaurant", "cafe", "food", "burger", "pizza", "starbucks", "mcdonalds", "kfc"}},
			{Name: "Grocery", Keywords: []string{"bigbasket", "big basket", "blinkit", "zepto", "dmart", "grocery"}},
			{Name: "Shopping", Keywords: []string{"amazon", "flipkart", "myntra", "zara", "h&m", "retail", "store", "mart", "mall"}},
			{Name: "Travel", Keywords: []string{"uber", "ola", "rapido", "irctc", "airline", "indigo", "air india", "hotel", "makemytrip", "fuel", "petrol", "shell"}},
			{Name: "Utilities", Keywords: []string{"electricity", "water", "bill", "bescom", "bwssb", "gas", "jio", "airtel", "vodafone"}},
			{Name: "Rent", Keywords: []string{"rent", "landlord", "broker"}},
			{Name: "Investment", Keywords: []string{"zerodha", "groww", "upstox", "mutual fund", "sip", "stocks"}},
			{Name: "EMI", Keywords: []string{"emi", "loan", "bajaj", "finance", "repayment", "installment"}},
			{Name: "Grooming", Keywords: []string{"salon", "barber", "spa", "grooming"}},
			{Name: DefaultCatchAll, Keywords: []string{"upi", "transfer to", "paid to"}},
			{Name: "Salary", Keywords: []string{"salary", "payroll", "bonus"}},
		},
	}
}

// LoadRules reads a rule file. A missing file is created with DefaultRules.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		rules := DefaultRules()
		if err := SaveRules(path, rules); err != nil {
			return RuleSet{}, err
		}
		return rules, nil
	}
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules: %w", err)
	}
	var rules RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	return normalizeRules(rules), nil
}

// normalizeRules lowercases and trims keywords and drops blank ones, so hand
// edited rule files match the same way as keywords added through AddKeyword.
func normalizeRules(rules RuleSet) RuleSet {
	out := RuleSet{CatchAll: strings.TrimSpace(rules.CatchAll), Categories: make([]Category, 0, len(rules.Categories))}
	for _, cat := range rules.Categories {
		kws := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		out.Categories = append(out.Categories, Category{Name: strings.TrimSpace(cat.Name), Keywords: kws})
	}
	return out
}

// SaveRules writes a rule file, creating its directory if needed.
func SaveRules(path string, rules RuleSet) error {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
