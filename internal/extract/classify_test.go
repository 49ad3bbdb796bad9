package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want DocumentType
	}{
		{"credit card phrase", "HDFC Bank Credit Card Statement", TypeCreditCard},
		{"statement date and payment due", "Statement Date 12/11/2025\nPayment Due Date 02/12/2025", TypeCreditCard},
		{"statement date alone", "Statement Date 12/11/2025\nSavings A/c 1234", TypeBank},
		{"savings account", "Your Savings A/c statement", TypeBank},
		{"account summary", "ACCOUNT SUMMARY for December", TypeBank},
		{"wallet", "PhonePe transaction history", TypeWallet},
		{"google pay", "Google Pay activity", TypeWallet},
		{"bank beats wallet", "Account Statement\nPaytm wallet top-up", TypeBank},
		{"credit card beats wallet", "paytm credit card", TypeCreditCard},
		{"default", "something else entirely", TypeBank},
		{"empty", "", TypeBank},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	for typ, source := range map[DocumentType]string{
		TypeBank:       "Bank",
		TypeCreditCard: "Credit Card",
		TypeWallet:     "UPI Wallet",
	} {
		ex, err := r.New(typ)
		require.NoError(t, err)
		assert.Equal(t, source, ex.Source())
	}

	_, err := r.New("OTHER")
	assert.Error(t, err)

	a, _ := r.New(TypeBank)
	b, _ := r.New(TypeBank)
	assert.NotSame(t, a, b, "each call returns a fresh extractor")

	assert.Panics(t, func() {
		r.Register(TypeBank, func() Extractor { return &BankExtractor{} })
	})
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"UPI/SWIGGY/452112/food", "UPI - SWIGGY"},
		{"UPI / Big Basket /99/x", "UPI - Big Basket"},
		{"ACH/ZERODHA BROKING/0012/", "ACH - ZERODHA BROKING"},
		{"NEFT salary ACME", "NEFT salary ACME"},
		{"UPI/no-trailing-slash", "UPI/no-trailing-slash"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanDescription(tt.in), tt.in)
	}
}

func TestTail(t *testing.T) {
	entries := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"c", "d"}, Tail(entries, 2))
	assert.Equal(t, entries, Tail(entries, 10))
	assert.Equal(t, entries, Tail(entries, 0))
	assert.Empty(t, Tail(nil, 3))
}
