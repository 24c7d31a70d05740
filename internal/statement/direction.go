package statement

import (
	"strings"

	"github.com/dvloznov/moneyflow/internal/domain"
)

var (
	creditHints = []string{"transfer in", "deposit", "credit", "refund", "salary", "interest", "cashback", "reversal"}
	debitHints  = []string{"transfer out", "withdraw", "debit", "payment", "upi", "pos", "atm", "emi", "charges", "fee", "bill"}
)

// InferDirection classifies a description by keyword. Credit hints are
// checked first; anything unrecognised is treated as a debit.
func InferDirection(desc string) domain.Direction {
	low := strings.ToLower(desc)
	for _, h := range creditHints {
		if strings.Contains(low, h) {
			return domain.DirectionCredit
		}
	}
	for _, h := range debitHints {
		if strings.Contains(low, h) {
			return domain.DirectionDebit
		}
	}
	return domain.DirectionDebit
}
