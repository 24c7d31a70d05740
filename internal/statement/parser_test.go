package statement

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
)

func TestParseTransactions_DebitLineWithBalance(t *testing.T) {
	got := ParseTransactions("05/01/2026 UPI/Zomato Order 450.00 12450.00", true)
	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d: %+v", len(got), got)
	}
	tx := got[0]
	if tx.Date != (civil.Date{Year: 2026, Month: 1, Day: 5}) {
		t.Errorf("date = %s, want 2026-01-05", tx.Date)
	}
	if tx.Description != "UPI/Zomato Order" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.Amount != "450.00" {
		t.Errorf("amount = %q, want 450.00", tx.Amount)
	}
	if tx.Balance == nil || *tx.Balance != "12450.00" {
		t.Errorf("balance = %v, want 12450.00", tx.Balance)
	}
	if tx.Direction != domain.DirectionDebit {
		t.Errorf("direction = %s, want DEBIT", tx.Direction)
	}
}

func TestParseTransactions_CreditLine(t *testing.T) {
	line := "01/02/2026 Salary credit 50,000.00 62,450.00"

	if got := ParseTransactions(line, true); len(got) != 0 {
		t.Errorf("debit-only mode should drop credits, got %+v", got)
	}

	got := ParseTransactions(line, false)
	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got))
	}
	if got[0].Direction != domain.DirectionCredit {
		t.Errorf("direction = %s, want CREDIT", got[0].Direction)
	}
	if got[0].Amount != "50000.00" || got[0].Balance == nil || *got[0].Balance != "62450.00" {
		t.Errorf("unexpected amounts: %s / %v", got[0].Amount, got[0].Balance)
	}
}

func TestParseTransactions_HeadersAndStitching(t *testing.T) {
	text := "Statement Period: 01/01/2026 - 31/01/2026\n" +
		"IFSC: HDFC0001234\n" +
		"Date Description Debit Credit Balance\n" +
		"05/01/2026 POS PURCHASE\n" +
		"AMAZON RETAIL 1,299.00 11,151.00\n"

	got := ParseTransactions(text, true)
	if len(got) != 1 {
		t.Fatalf("expected 1 stitched transaction, got %d: %+v", len(got), got)
	}
	if got[0].Description != "POS PURCHASE AMAZON RETAIL" {
		t.Errorf("description = %q", got[0].Description)
	}
	if got[0].Amount != "1299.00" {
		t.Errorf("amount = %q, want 1299.00", got[0].Amount)
	}
}

func TestParseTransactions_Filters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty input", "", 0},
		{"garbage", "lorem ipsum\n$$$ ###", 0},
		{"one rupee verification", "06/01/2026 Card verification fee 1.00 11150.00", 0},
		{"no amount", "06/01/2026 Opening note", 0},
		{"unparseable date", "31/31/2026 UPI payment 120.00 900.00", 0},
		{"sub-unit tokens dropped", "07/01/2026 ATM withdrawal 0.50 2,000.00 9,150.00", 1},
		{"negative amount dropped", "07/01/2026 ATM withdrawal -500.00", 0},
		{"duplicate lines", "05/01/2026 UPI Swiggy 300.00 1000.00\n05/01/2026 UPI Swiggy 300.00 1000.00", 1},
		{"same amount different day", "05/01/2026 UPI Swiggy 300.00\n06/01/2026 UPI Swiggy 300.00", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTransactions(tt.text, true)
			if got == nil {
				t.Fatal("result must not be nil")
			}
			if len(got) != tt.want {
				t.Errorf("got %d transactions, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestParseTransactions_SingleAmountHasNoBalance(t *testing.T) {
	got := ParseTransactions("2026-01-09 Electricity bill ₹ 1,540.50", true)
	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got))
	}
	if got[0].Balance != nil {
		t.Errorf("expected no balance, got %s", *got[0].Balance)
	}
	if got[0].Amount != "1540.50" {
		t.Errorf("amount = %q, want 1540.50", got[0].Amount)
	}
	if got[0].Description != "Electricity bill" {
		t.Errorf("description = %q", got[0].Description)
	}
}

func TestParseTransactions_CurrencyPrefix(t *testing.T) {
	tests := []struct {
		name, line, wantDesc string
	}{
		{"Rs. glued", "05/01/2026 POS Purchase Rs.450.00 12,000.00", "POS Purchase"},
		{"Rs glued", "05/01/2026 POS Purchase Rs450.00 12,000.00", "POS Purchase"},
		{"INR spaced", "05/01/2026 POS Purchase INR 450.00 12,000.00", "POS Purchase INR"},
		{"inr glued", "05/01/2026 POS Purchase inr450.00 12,000.00", "POS Purchase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTransactions(tt.line, true)
			if len(got) != 1 {
				t.Fatalf("expected 1 transaction, got %d: %+v", len(got), got)
			}
			if got[0].Amount != "450.00" {
				t.Errorf("amount = %q, want 450.00", got[0].Amount)
			}
			if got[0].Balance == nil || *got[0].Balance != "12000.00" {
				t.Errorf("balance = %v, want 12000.00", got[0].Balance)
			}
			if got[0].Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", got[0].Description, tt.wantDesc)
			}
		})
	}

	// A currency word inside a longer word is not a prefix.
	if got := ParseTransactions("05/01/2026 Mrs450.00 cafe desk 900.00", true); len(got) != 1 || got[0].Amount != "900.00" || got[0].Balance != nil {
		t.Errorf("unexpected parse: %+v", got)
	}
}

func TestParseTransactions_DebitOnlyAlwaysDebit(t *testing.T) {
	text := "05/01/2026 Movie tickets 600.00\n06/01/2026 Refund received 200.00\n07/01/2026 UPI Ola 150.00"
	for _, tx := range ParseTransactions(text, true) {
		if tx.Direction != domain.DirectionDebit {
			t.Errorf("%q has direction %s", tx.Description, tx.Direction)
		}
		if !tx.AmountValue().IsPositive() {
			t.Errorf("%q has non-positive amount %s", tx.Description, tx.Amount)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want civil.Date
		ok   bool
	}{
		{"05/01/2026", civil.Date{Year: 2026, Month: 1, Day: 5}, true},
		{"05-01-2026", civil.Date{Year: 2026, Month: 1, Day: 5}, true},
		{"01/13/2026", civil.Date{Year: 2026, Month: 1, Day: 13}, true},
		{"05/01/26", civil.Date{Year: 2026, Month: 1, Day: 5}, true},
		{"2026-01-05", civil.Date{Year: 2026, Month: 1, Day: 5}, true},
		{"5 Jan 2026", civil.Date{Year: 2026, Month: 1, Day: 5}, true},
		{"15 jan  2026", civil.Date{Year: 2026, Month: 1, Day: 15}, true},
		{"31/31/2026", civil.Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"₹ 1,299.00", "1299"},
		{"12,450.00", "12450"},
		{"1,24,500.00", "124500"},
		{"450.00CR", "450"},
		{"450.00 dr", "450"},
		{"-", "0"},
		{".", "0"},
		{"-.", "0"},
		{"abc", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseAmount(tt.in).String(); got != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindAmounts_SkipsReferenceNumbers(t *testing.T) {
	tokens := findAmounts(" UPI/402912345678/Zomato 450.00 12450.00")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].value.String() != "450" || tokens[1].value.String() != "12450" {
		t.Errorf("unexpected tokens: %s, %s", tokens[0].value, tokens[1].value)
	}
}

func TestNormalize(t *testing.T) {
	in := "  Pay  ment – UPI—ref   42  "
	want := "Pay ment - UPI-ref 42"
	if got := Normalize(in); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestStitchLines_LeadingUndatedLine(t *testing.T) {
	lines := StitchLines("continued from previous page\n05/01/2026 UPI Uber 220.00\nTrip to airport")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if lines[1] != "05/01/2026 UPI Uber 220.00 Trip to airport" {
		t.Errorf("stitched line = %q", lines[1])
	}
}

func TestInferDirection(t *testing.T) {
	tests := []struct {
		desc string
		want domain.Direction
	}{
		{"NEFT transfer in from employer", domain.DirectionCredit},
		{"Cashback on card", domain.DirectionCredit},
		{"ATM withdrawal", domain.DirectionDebit},
		{"Movie tickets", domain.DirectionDebit},
		{"Interest credited", domain.DirectionCredit},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := InferDirection(tt.desc); got != tt.want {
				t.Errorf("InferDirection(%q) = %s, want %s", tt.desc, got, tt.want)
			}
		})
	}
}
