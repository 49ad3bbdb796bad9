package extract

import "strings"

// DocumentType selects the extractor for a statement.
type DocumentType string

const (
	TypeBank       DocumentType = "BANK"
	TypeCreditCard DocumentType = "CREDIT_CARD"
	TypeWallet     DocumentType = "WALLET"
)

var (
	bankPhrases = []string{
		"savings a/c",
		"current a/c",
		"account summary",
		"account balance",
		"account statement",
	}
	walletNames = []string{"phonepe", "google pay", "paytm"}
)

// Classify sniffs the first page of a document. Order matters: credit card
// markers win over bank phrases, which win over wallet app names.
func Classify(firstPage string) DocumentType {
	text := strings.ToLower(firstPage)

	switch {
	case strings.Contains(text, "credit card"),
		strings.Contains(text, "statement date") && strings.Contains(text, "payment due"):
		return TypeCreditCard
	case containsAny(text, bankPhrases):
		return TypeBank
	case containsAny(text, walletNames):
		return TypeWallet
	default:
		return TypeBank
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
