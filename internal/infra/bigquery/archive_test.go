package bigquery

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"google.golang.org/api/googleapi"
)

func TestRowFromTransaction(t *testing.T) {
	balance := "10250.75"
	tx := domain.Transaction{
		Date:        civil.Date{Year: 2024, Month: 2, Day: 1},
		Description: "UPI Swiggy",
		Amount:      "450.50",
		Balance:     &balance,
		Direction:   domain.DirectionDebit,
		Category:    "Food",
	}
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	row, err := rowFromTransaction("run-1", "u1", "gs://b/s.pdf", tx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.TransactionID == "" || row.ParsingRunID != "run-1" || row.UserID != "u1" {
		t.Errorf("unexpected identifiers: %+v", row)
	}
	if row.Amount.FloatString(2) != "450.50" {
		t.Errorf("amount = %s", row.Amount.FloatString(2))
	}
	if row.BalanceAfter == nil || row.BalanceAfter.FloatString(2) != "10250.75" {
		t.Errorf("balance = %v", row.BalanceAfter)
	}
	if !row.CategoryName.Valid || row.CategoryName.StringVal != "Food" {
		t.Errorf("category = %+v", row.CategoryName)
	}

	back := row.Transaction()
	if back.Amount != "450.50" || back.Balance == nil || *back.Balance != balance || back.Direction != domain.DirectionDebit {
		t.Errorf("Transaction() = %+v", back)
	}
}

func TestRowFromTransaction_NoBalanceOrCategory(t *testing.T) {
	tx := domain.Transaction{Date: civil.Date{Year: 2024, Month: 2, Day: 1}, Amount: "99.00", Direction: domain.DirectionDebit}
	row, err := rowFromTransaction("run-1", "u1", "", tx, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.BalanceAfter != nil || row.CategoryName.Valid {
		t.Errorf("expected NULL balance and category, got %+v", row)
	}
}

func TestRowFromTransaction_BadAmount(t *testing.T) {
	tx := domain.Transaction{Amount: "abc"}
	if _, err := rowFromTransaction("run-1", "u1", "", tx, time.Now()); err == nil {
		t.Error("expected error for malformed amount")
	}
}

func TestErrorMessage(t *testing.T) {
	if errorMessage(nil) != "" {
		t.Error("nil error should give an empty message")
	}
	long := errors.New(strings.Repeat("x", maxErrorLen+10))
	if got := errorMessage(long); len(got) != maxErrorLen {
		t.Errorf("message length = %d, want %d", len(got), maxErrorLen)
	}
}

func TestIsAlreadyExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"conflict", &googleapi.Error{Code: 409}, true},
		{"wrapped conflict", fmt.Errorf("create: %w", &googleapi.Error{Code: 409}), true},
		{"not found", &googleapi.Error{Code: 404}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAlreadyExists(tt.err); got != tt.want {
				t.Errorf("isAlreadyExists() = %v, want %v", got, tt.want)
			}
		})
	}
}
