package categorize

import (
	"errors"
	"strings"
	"sync"
)

// Other is returned when no keyword matches.
const Other = "Others"

// ErrEmptyKeyword is returned by AddKeyword for blank keywords or categories.
var ErrEmptyKeyword = errors.New("keyword and category must not be empty")

// AddResult reports the outcome of AddKeyword. When Added is false, Owner
// names the category that already holds the keyword.
type AddResult struct {
	Added bool
	Owner string
}

// Categorizer matches descriptions against a RuleSet. Mutations are written
// back to the rule file before AddKeyword returns.
type Categorizer struct {
	mu    sync.RWMutex
	path  string
	rules RuleSet
}

// Open loads the rule file at path, creating it with defaults when absent.
func Open(path string) (*Categorizer, error) {
	rules, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return &Categorizer{path: path, rules: rules}, nil
}

// New wraps an in-memory rule set without persistence.
func New(rules RuleSet) *Categorizer {
	return &Categorizer{rules: normalizeRules(rules)}
}

// Categorize returns the first category with a keyword contained in desc.
// The catch-all category is consulted only after every other category.
func (c *Categorizer) Categorize(desc string) string {
	d := strings.ToLower(desc)
	if strings.TrimSpace(d) == "" {
		return Other
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var catchAll *Category
	for i := range c.rules.Categories {
		cat := &c.rules.Categories[i]
		if cat.Name == c.rules.CatchAll {
			catchAll = cat
			continue
		}
		if matches(d, cat.Keywords) {
			return cat.Name
		}
	}
	if catchAll != nil && matches(d, catchAll.Keywords) {
		return catchAll.Name
	}
	return Other
}

func matches(desc string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// AddKeyword adds keyword to category, creating the category if needed.
// Keywords are unique across all categories: a keyword that already exists
// anywhere leaves the rules unchanged and is reported with its owner.
func (c *Categorizer) AddKeyword(category, keyword string) (AddResult, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	category = strings.TrimSpace(category)
	if keyword == "" || category == "" {
		return AddResult{}, ErrEmptyKeyword
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cat := range c.rules.Categories {
		for _, kw := range cat.Keywords {
			if kw == keyword {
				return AddResult{Owner: cat.Name}, nil
			}
		}
	}

	next := cloneRules(c.rules)
	idx := -1
	for i, cat := range next.Categories {
		if cat.Name == category {
			idx = i
			break
		}
	}
	if idx < 0 {
		next.Categories = append(next.Categories, Category{Name: category})
		idx = len(next.Categories) - 1
	}
	next.Categories[idx].Keywords = append(next.Categories[idx].Keywords, keyword)

	if c.path != "" {
		if err := SaveRules(c.path, next); err != nil {
			return AddResult{}, err
		}
	}
	c.rules = next
	return AddResult{Added: true}, nil
}

// Categories lists category names in rule order.
func (c *Categorizer) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.rules.Categories))
	for _, cat := range c.rules.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// Rules returns a copy of the current rule set.
func (c *Categorizer) Rules() RuleSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRules(c.rules)
}

func cloneRules(r RuleSet) RuleSet {
	out := RuleSet{CatchAll: r.CatchAll, Categories: make([]Category, len(r.Categories))}
	for i, cat := range r.Categories {
		out.Categories[i] = Category{Name: cat.Name, Keywords: append([]string(nil), cat.Keywords...)}
	}
	return out
}
