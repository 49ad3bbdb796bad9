// Package dedup detects transactions already present in the ledger by a
// stable content hash.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// HashOf digests the normalized transaction fields. Description and source
// are compared case-insensitively and without surrounding whitespace. The
// output must stay stable: hashes persisted by earlier runs are compared
// against it.
func HashOf(date time.Time, amount decimal.Decimal, description, source string) string {
	key := strings.Join([]string{
		date.Format("2006-01-02"),
		amount.StringFixed(2),
		strings.ToLower(strings.TrimSpace(description)),
		strings.ToLower(strings.TrimSpace(source)),
	}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Index is the set of accepted hashes. It is safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	hashes map[string]struct{}
}

// NewIndex seeds an index with previously accepted hashes. Empty hashes are ignored.
func NewIndex(hashes ...string) *Index {
	idx := &Index{hashes: make(map[string]struct{}, len(hashes))}
	for _, h := range hashes {
		if h != "" {
			idx.hashes[h] = struct{}{}
		}
	}
	return idx
}

func (i *Index) Contains(hash string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.hashes[hash]
	return ok
}

// Add records hash as accepted. It reports false if it was already present.
func (i *Index) Add(hash string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.hashes[hash]; ok {
		return false
	}
	i.hashes[hash] = struct{}{}
	return true
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.hashes)
}

// IsDuplicate reports whether a transaction with these fields was already accepted.
func (i *Index) IsDuplicate(date time.Time, amount decimal.Decimal, description, source string) bool {
	return i.Contains(HashOf(date, amount, description, source))
}
