package dedup

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dec4 = time.Date(2025, time.December, 4, 0, 0, 0, 0, time.UTC)

func TestHashOf_Normalization(t *testing.T) {
	base := HashOf(dec4, decimal.RequireFromString("250.00"), "UPI - SWIGGY", "Bank")

	assert.Len(t, base, 64)
	assert.Equal(t, base, HashOf(dec4, decimal.RequireFromString("250"), "  upi - swiggy ", " BANK"))
	assert.Equal(t, base, HashOf(dec4.Add(15*time.Hour), decimal.RequireFromString("250.00"), "UPI - SWIGGY", "Bank"))
}

func TestHashOf_Distinguishes(t *testing.T) {
	base := HashOf(dec4, decimal.RequireFromString("250.00"), "UPI - SWIGGY", "Bank")

	assert.NotEqual(t, base, HashOf(dec4.AddDate(0, 0, 1), decimal.RequireFromString("250.00"), "UPI - SWIGGY", "Bank"))
	assert.NotEqual(t, base, HashOf(dec4, decimal.RequireFromString("250.01"), "UPI - SWIGGY", "Bank"))
	assert.NotEqual(t, base, HashOf(dec4, decimal.RequireFromString("250.00"), "UPI - ZOMATO", "Bank"))
	assert.NotEqual(t, base, HashOf(dec4, decimal.RequireFromString("250.00"), "UPI - SWIGGY", "Credit Card"))
}

func TestHashOf_Stable(t *testing.T) {
	// Persisted ledgers depend on this exact value.
	got := HashOf(dec4, decimal.RequireFromString("10"), "x", "y")
	assert.Equal(t, HashOf(dec4, decimal.RequireFromString("10.00"), "X", "Y"), got)
	assert.Equal(t, got, HashOf(dec4, decimal.NewFromInt(10), "x", "y"))
}

func TestIndex(t *testing.T) {
	idx := NewIndex("a", "b", "")
	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains("a"))
	assert.False(t, idx.Contains("c"))

	assert.True(t, idx.Add("c"))
	assert.False(t, idx.Add("c"))
	assert.True(t, idx.Contains("c"))
	assert.Equal(t, 3, idx.Len())
}

func TestIndex_Idempotent(t *testing.T) {
	batch := []string{"h1", "h2", "h2", "h3"}
	idx := NewIndex()

	var first []string
	for _, h := range batch {
		if idx.Add(h) {
			first = append(first, h)
		}
	}
	assert.Equal(t, []string{"h1", "h2", "h3"}, first)

	var second []string
	for _, h := range batch {
		if idx.Add(h) {
			second = append(second, h)
		}
	}
	assert.Empty(t, second)
}

func TestIndex_Concurrent(t *testing.T) {
	idx := NewIndex()
	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if idx.Add("same") {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, added)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_IsDuplicate(t *testing.T) {
	amt := decimal.RequireFromString("99.50")
	idx := NewIndex(HashOf(dec4, amt, "Uber Trip", "Credit Card"))
	assert.True(t, idx.IsDuplicate(dec4, amt, "UBER TRIP ", "credit card"))
	assert.False(t, idx.IsDuplicate(dec4, amt, "Uber Trip", "Bank"))
}
