package statement

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	amountCandidate = regexp.MustCompile(`(?:₹\s*)?[-+]?\d[\d,]*(?:\.\d+)?(?:[CcDd][Rr])?`)
	// Western (12,450.00) and Indian (1,24,500.00) grouping, or plain digits.
	amountShape = regexp.MustCompile(`^[-+]?(?:\d{1,3}(?:,\d{2,3})*|\d+)(?:\.\d{1,2})?$`)
)

type amountToken struct {
	start, end int
	value      decimal.Decimal
}

// currencyWords may sit directly against an amount, as in "Rs.450.00".
var currencyWords = []string{"rs.", "rs", "inr"}

// findAmounts returns every amount-like token in s, in order of appearance.
// A token must not touch a letter, a digit, "/" or "." on either side, which
// keeps reference numbers such as UPI/123456/ out. A currency word glued to
// the left of a token belongs to the token's span.
func findAmounts(s string) []amountToken {
	var tokens []amountToken
	for _, loc := range amountCandidate.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		for end > start && s[end-1] == ',' {
			end--
		}
		lead := start
		if start > 0 {
			r, _ := utf8.DecodeLastRuneInString(s[:start])
			if blocksAmount(r) {
				if lead = currencyPrefix(s, start); lead < 0 {
					continue
				}
			}
		}
		if end < len(s) {
			r, _ := utf8.DecodeRuneInString(s[end:])
			if blocksAmount(r) {
				continue
			}
		}
		raw := s[start:end]
		if !amountShape.MatchString(cleanAmount(raw)) {
			continue
		}
		tokens = append(tokens, amountToken{start: lead, end: end, value: ParseAmount(raw)})
	}
	return tokens
}

// currencyPrefix returns the offset of a standalone currency word ending at
// i, or -1.
func currencyPrefix(s string, i int) int {
	for _, w := range currencyWords {
		at := i - len(w)
		if at < 0 || !strings.EqualFold(s[at:i], w) {
			continue
		}
		if at > 0 {
			r, _ := utf8.DecodeLastRuneInString(s[:at])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		return at
	}
	return -1
}

func blocksAmount(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '/' || r == '.'
}

func cleanAmount(raw string) string {
	s := strings.ReplaceAll(raw, "₹", "")
	s = strings.Join(strings.Fields(s), "")
	if n := len(s); n >= 2 {
		if suffix := strings.ToUpper(s[n-2:]); suffix == "CR" || suffix == "DR" {
			s = s[:n-2]
		}
	}
	return s
}

// ParseAmount converts an amount token to a decimal. The currency glyph,
// whitespace, thousands separators and a trailing CR/DR marker are ignored;
// anything that is still not a number yields zero.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.ReplaceAll(cleanAmount(raw), ",", "")
	switch s {
	case "", "-", ".", "-.":
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
