package statement

import (
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/aclindsa/ofxgo"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
)

// ParseOFX reads bank and credit card statement transactions from an OFX
// document. Negative amounts are debits; the same debit-only, 1.00 and
// duplicate filters as ParseTransactions apply.
func ParseOFX(r io.Reader, debitOnly bool) ([]domain.Transaction, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, fmt.Errorf("ParseOFX: parsing response: %w", err)
	}
	if len(resp.Bank) == 0 && len(resp.CreditCard) == 0 {
		return nil, fmt.Errorf("ParseOFX: no bank or credit card statements")
	}

	var trns []ofxgo.Transaction
	for _, msg := range append(resp.Bank, resp.CreditCard...) {
		switch stmt := msg.(type) {
		case *ofxgo.StatementResponse:
			if stmt.BankTranList != nil {
				trns = append(trns, stmt.BankTranList.Transactions...)
			}
		case *ofxgo.CCStatementResponse:
			if stmt.BankTranList != nil {
				trns = append(trns, stmt.BankTranList.Transactions...)
			}
		default:
			return nil, fmt.Errorf("ParseOFX: unexpected message type %T", msg)
		}
	}
	return fromOFX(trns, debitOnly), nil
}

func fromOFX(trns []ofxgo.Transaction, debitOnly bool) []domain.Transaction {
	out := []domain.Transaction{}
	seen := make(map[string]struct{})

	for _, t := range trns {
		value, err := decimal.NewFromString(t.TrnAmt.FloatString(2))
		if err != nil {
			continue
		}
		direction := domain.DirectionCredit
		if value.IsNegative() {
			direction = domain.DirectionDebit
		}

		desc := Normalize(strings.TrimSpace(string(t.Name) + " " + string(t.Memo)))
		tx := domain.Transaction{
			Date:        civil.DateOf(t.DtPosted.Time),
			Description: desc,
			Amount:      value.Abs().Round(2).StringFixed(2),
			Direction:   direction,
		}
		if !accept(&tx, debitOnly) {
			continue
		}
		key := dedupKey(tx)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}
	return out
}
