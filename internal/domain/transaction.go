package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Direction tells whether money left (DEBIT) or entered (CREDIT) the account.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Transaction is one candidate line recovered from a bank statement.
// Amount and Balance are fixed-point strings with two fractional digits,
// the same rendering the expense screens receive.
type Transaction struct {
	Date        civil.Date `json:"date"`
	Description string     `json:"description"`
	Amount      string     `json:"amount"`
	Balance     *string    `json:"balance"`
	Direction   Direction  `json:"direction"`

	// Category is filled in by categorization, empty straight out of the parser.
	Category string `json:"category,omitempty"`
}

// AmountValue returns Amount as a decimal. Malformed strings yield zero.
func (t Transaction) AmountValue() decimal.Decimal {
	d, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ExpenseSource records where an expense row came from.
type ExpenseSource string

const (
	SourceManual    ExpenseSource = "MANUAL"
	SourceOCR       ExpenseSource = "OCR"
	SourceStatement ExpenseSource = "STATEMENT"
)

// Expense is an accepted transaction stored against a user.
type Expense struct {
	ID          string
	UserID      string
	Description string
	Category    string
	Amount      decimal.Decimal
	Date        civil.Date
	Direction   Direction
	Source      ExpenseSource
	RawText     string
}
