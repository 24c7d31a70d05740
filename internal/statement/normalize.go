package statement

import (
	"regexp"
	"strings"
)

var (
	dashReplacer = strings.NewReplacer(
		"\u2010", "-", "\u2011", "-", "\u2012", "-",
		"\u2013", "-", "\u2014", "-", "\u2015", "-",
		"\u2212", "-",
		"\u00a0", " ",
	)
	multiSpace = regexp.MustCompile(` {2,}`)
)

// Normalize folds dash variants to "-", non-breaking spaces to plain spaces,
// squeezes runs of spaces and trims the result.
func Normalize(s string) string {
	s = dashReplacer.Replace(s)
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func isHeaderLine(line string) bool {
	low := strings.ToLower(line)
	for _, marker := range []string{"statement period", "account type", "branch", "ifsc"} {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return strings.Contains(low, "date") &&
		strings.Contains(low, "description") &&
		(strings.Contains(low, "credit") || strings.Contains(low, "debit")) &&
		strings.Contains(low, "balance")
}

// StitchLines splits statement text into one line per transaction. Header
// lines are dropped and lines without a date are glued onto the previous
// line, so wrapped descriptions stay with their amounts.
func StitchLines(text string) []string {
	var out []string
	for _, raw := range strings.Split(Normalize(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isHeaderLine(line) {
			continue
		}
		line = Normalize(line)
		if hasDate(line) || len(out) == 0 {
			out = append(out, line)
			continue
		}
		out[len(out)-1] = out[len(out)-1] + " " + line
	}
	return out
}
