// Package statement turns bank statement text into transaction candidates.
package statement

import (
	"strings"

	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
)

const dedupDescriptionRunes = 60

var (
	minTokenValue = decimal.NewFromInt(1)
	oneRupee      = decimal.RequireFromString("1.00")
)

// ParseTransactions extracts transactions from raw statement text.
//
// In debit-only mode lines classified as credits are dropped and every
// returned transaction carries DirectionDebit. Lines without a parseable date
// or without a usable amount are skipped; the result is never nil.
func ParseTransactions(text string, debitOnly bool) []domain.Transaction {
	out := []domain.Transaction{}
	seen := make(map[string]struct{})

	for _, line := range StitchLines(text) {
		tx, ok := parseLine(line)
		if !ok {
			continue
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

func parseLine(line string) (domain.Transaction, bool) {
	start, end, ok := findDate(line)
	if !ok {
		return domain.Transaction{}, false
	}
	date, ok := ParseDate(line[start:end])
	if !ok {
		return domain.Transaction{}, false
	}

	rest := line[:start] + " " + line[end:]
	tokens := findAmounts(rest)

	var amounts []decimal.Decimal
	for _, tok := range tokens {
		if tok.value.Abs().LessThan(minTokenValue) {
			continue
		}
		amounts = append(amounts, tok.value)
	}
	if len(amounts) == 0 {
		return domain.Transaction{}, false
	}

	var balance *string
	candidates := amounts
	if len(amounts) >= 2 {
		b := amounts[len(amounts)-1].StringFixed(2)
		balance = &b
		candidates = amounts[:len(amounts)-1]
	}
	amount := candidates[len(candidates)-1].Round(2)

	desc := stripSpans(rest, tokens)
	return domain.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount.StringFixed(2),
		Balance:     balance,
		Direction:   InferDirection(desc),
	}, true
}

// accept applies the direction and amount filters, normalizing the
// direction in debit-only mode.
func accept(tx *domain.Transaction, debitOnly bool) bool {
	if debitOnly {
		if tx.Direction == domain.DirectionCredit {
			return false
		}
		tx.Direction = domain.DirectionDebit
	}
	amount := tx.AmountValue()
	if !amount.IsPositive() {
		return false
	}
	// Statements list card verification holds and similar noise as 1.00.
	return !amount.Equal(oneRupee)
}

func stripSpans(s string, tokens []amountToken) string {
	var b strings.Builder
	prev := 0
	for _, tok := range tokens {
		b.WriteString(s[prev:tok.start])
		b.WriteByte(' ')
		prev = tok.end
	}
	b.WriteString(s[prev:])
	return Normalize(b.String())
}

func dedupKey(tx domain.Transaction) string {
	desc := []rune(strings.ToLower(tx.Description))
	if len(desc) > dedupDescriptionRunes {
		desc = desc[:dedupDescriptionRunes]
	}
	return tx.Date.String() + "|" + tx.Amount + "|" + string(desc)
}
