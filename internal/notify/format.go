package notify

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

// whole truncates toward zero and prints the integer part.
func whole(d decimal.Decimal) string {
	return strconv.FormatInt(d.IntPart(), 10)
}

// grouped prints the integer part with comma thousands separators.
func grouped(d decimal.Decimal) string {
	digits := whole(d)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// percent renders a two-place percentage, always with a fractional part.
func percent(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// wholePercent is saved/target*100 truncated, zero for a zero target.
func wholePercent(saved, target decimal.Decimal) int64 {
	if !target.IsPositive() {
		return 0
	}
	return saved.Div(target).Mul(hundred).IntPart()
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
