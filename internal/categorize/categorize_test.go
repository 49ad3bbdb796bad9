package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	c := New(DefaultRules())

	tests := []struct {
		desc string
		want string
	}{
		{"UPI - SWIGGY", "Food"},
		{"Paid to Zomato", "Food"},
		{"UPI - Ramesh Kumar", "UPI Payment"},
		{"transfer to savings", "UPI Payment"},
		{"NEFT SALARY ACME", "Salary"},
		{"UPI - ZERODHA", "Investment"},
		{"random merchant xyz", "Others"},
		{"", "Others"},
		{"   ", "Others"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.desc))
		})
	}
}

func TestCategorize_CatchAllCheckedLastWhereverItIs(t *testing.T) {
	c := New(RuleSet{
		CatchAll: "Generic",
		Categories: []Category{
			{Name: "Generic", Keywords: []string{"upi"}},
			{Name: "Food", Keywords: []string{"swiggy"}},
		},
	})
	assert.Equal(t, "Food", c.Categorize("UPI/SWIGGY/123"))
	assert.Equal(t, "Generic", c.Categorize("UPI/someone"))
}

func TestAddKeyword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules", "categories.yaml")
	c, err := Open(path)
	require.NoError(t, err)

	res, err := c.AddKeyword("Food", "  Chai Point ")
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.Equal(t, "Food", c.Categorize("UPI - CHAI POINT"))

	// Persisted immediately.
	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "Food", reloaded.Categorize("chai point blr"))
}

func TestAddKeyword_DuplicateAnywhere(t *testing.T) {
	c := New(DefaultRules())
	before := c.Rules()

	res, err := c.AddKeyword("Shopping", "SWIGGY")
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Equal(t, "Food", res.Owner)
	assert.Equal(t, before, c.Rules())
}

func TestAddKeyword_NewCategory(t *testing.T) {
	c := New(DefaultRules())
	res, err := c.AddKeyword("Pets", "pawsome")
	require.NoError(t, err)
	assert.True(t, res.Added)

	cats := c.Categories()
	assert.Equal(t, "Pets", cats[len(cats)-1])
	assert.Equal(t, "Pets", c.Categorize("PAWSOME ONLINE"))
}

func TestAddKeyword_Empty(t *testing.T) {
	c := New(DefaultRules())
	_, err := c.AddKeyword("Food", "  ")
	assert.ErrorIs(t, err, ErrEmptyKeyword)
	_, err = c.AddKeyword("", "tea")
	assert.ErrorIs(t, err, ErrEmptyKeyword)
}

func TestLoadRules_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)

	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, rules, again)
}

func TestLoadRules_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: [unclosed"), 0o644))
	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestLoadRules_NormalizesHandEditedKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	yml := "catch_all: UPI Payment\n" +
		"categories:\n" +
		"  - name: Food\n" +
		"    keywords: [\"  Swiggy \", ZOMATO, \"\"]\n" +
		"  - name: UPI Payment\n" +
		"    keywords: [UPI]\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"swiggy", "zomato"}, rules.Categories[0].Keywords)

	c, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "Food", c.Categorize("UPI - SWIGGY"))
	assert.Equal(t, "UPI Payment", c.Categorize("UPI - someone"))

	res, err := c.AddKeyword("Shopping", "swiggy")
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.Equal(t, "Food", res.Owner)
}

func TestCategories_Order(t *testing.T) {
	c := New(DefaultRules())
	cats := c.Categories()
	assert.Equal(t, "Food", cats[0])
	assert.Contains(t, cats, "UPI Payment")
	assert.Len(t, cats, 11)
}
