// Package extract turns statement documents into transaction records.
//
// Three extractors share one contract and are picked by Classify from the
// first page of a document. None of them fails on a line it cannot read:
// the line is skipped and the decision is recorded in the trace.
package extract

import (
	"fmt"

	"github.com/cleared-dev/tally/internal/document"
	"github.com/cleared-dev/tally/internal/model"
)

// Extractor converts one document into transactions. Extractors keep
// per-document state and must not be reused across documents.
type Extractor interface {
	Extract(doc *document.Document) []model.Transaction
	// Source is the label stamped on every emitted transaction.
	Source() string
	// Trace returns one human-readable entry per parsing decision.
	Trace() []string
}

// Factory builds a fresh extractor.
type Factory func() Extractor

// Registry maps document types to extractor factories.
type Registry struct {
	factories map[DocumentType]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[DocumentType]Factory)}
}

// Register adds a factory. Panics on duplicate type.
func (r *Registry) Register(t DocumentType, f Factory) {
	if _, ok := r.factories[t]; ok {
		panic("duplicate extractor for document type: " + string(t))
	}
	r.factories[t] = f
}

// New returns a fresh extractor for t.
func (r *Registry) New(t DocumentType) (Extractor, error) {
	f, ok := r.factories[t]
	if !ok {
		return nil, fmt.Errorf("no extractor for document type %q", t)
	}
	return f(), nil
}

// DefaultRegistry returns a registry with the built-in extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeBank, func() Extractor { return &BankExtractor{} })
	r.Register(TypeCreditCard, func() Extractor { return &CreditCardExtractor{} })
	r.Register(TypeWallet, func() Extractor { return &WalletExtractor{} })
	return r
}

// Trace is an append-only log of extraction decisions.
type Trace struct {
	entries []string
}

// Addf appends a formatted entry.
func (t *Trace) Addf(format string, args ...any) {
	t.entries = append(t.entries, fmt.Sprintf(format, args...))
}

// Entries returns all entries in order.
func (t *Trace) Entries() []string {
	return t.entries
}

// Tail returns the last n entries of entries (all of them when n <= 0).
func Tail(entries []string, n int) []string {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
