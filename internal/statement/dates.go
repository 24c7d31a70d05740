package statement

import (
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Checked in order; the first pattern with a match wins.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{2}[/-]\d{2}[/-]\d{2,4})\b`),
	regexp.MustCompile(`\b(\d{4}[/-]\d{2}[/-]\d{2})\b`),
	regexp.MustCompile(`\b(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\b`),
}

// Day-first wins over month-first when both could apply.
var dateLayouts = []string{
	"02/01/2006",
	"01/02/2006",
	"02/01/06",
	"01/02/06",
	"2006/01/02",
	"2 Jan 2006",
	"2 January 2006",
}

func hasDate(line string) bool {
	_, _, ok := findDate(line)
	return ok
}

// findDate returns the byte span of the first date token in line.
func findDate(line string) (start, end int, ok bool) {
	for _, re := range datePatterns {
		if loc := re.FindStringSubmatchIndex(line); loc != nil {
			return loc[2], loc[3], true
		}
	}
	return 0, 0, false
}

// ParseDate converts a date token into a calendar date.
func ParseDate(s string) (civil.Date, bool) {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "-", "/")), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}
