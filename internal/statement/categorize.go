package statement

import (
	"strings"

	"github.com/dvloznov/moneyflow/internal/domain"
)

// DefaultCategory is used when no rule matches.
const DefaultCategory = "Other"

type categoryRule struct {
	category string
	keywords []string
}

// Ordered by priority: the first allowed category with a matching keyword wins.
var categoryRules = []categoryRule{
	{"Utilities", []string{"electricity", "water", "utility", "gas", "bill"}},
	{"Loan", []string{"emi", "loan", "car loan", "home loan"}},
	{"Insurance", []string{"insurance", "premium"}},
	{"Transport", []string{"uber", "ola", "fuel", "petrol", "diesel", "metro"}},
	{"Groceries", []string{"dmart", "grocery", "mart", "bigbasket", "blinkit"}},
	{"Food", []string{"zomato", "swiggy", "restaurant", "cafe", "food"}},
	{"Credit Card", []string{"credit card", "cc", "card payment"}},
	{"Transfer", []string{"account transfer", "transfer in", "transfer out", "imps", "neft", "rtgs"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "ajio", "shopping"}},
	{"Medical", []string{"hospital", "pharmacy", "medical", "clinic", "doctor"}},
}

// Categorize picks a category for description out of allowed. Falls back to
// "Other" when it is allowed, otherwise to the first allowed category. An
// empty allowed list behaves like ["Other"].
func Categorize(description string, allowed []string) string {
	if len(allowed) == 0 {
		allowed = []string{DefaultCategory}
	}
	permitted := make(map[string]struct{}, len(allowed))
	for _, c := range allowed {
		permitted[c] = struct{}{}
	}

	low := strings.ToLower(description)
	for _, rule := range categoryRules {
		if _, ok := permitted[rule.category]; !ok {
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(low, kw) {
				return rule.category
			}
		}
	}

	if _, ok := permitted[DefaultCategory]; ok {
		return DefaultCategory
	}
	return allowed[0]
}

// CategorizeAll fills in Category on every transaction.
func CategorizeAll(txs []domain.Transaction, allowed []string) {
	for i := range txs {
		txs[i].Category = Categorize(txs[i].Description, allowed)
	}
}
