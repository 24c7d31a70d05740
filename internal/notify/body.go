package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dvloznov/moneyflow/internal/domain"
)

const rule = "=============================="

// BuildDetailedBody renders the plain-text goal email shared by every
// savings notification. notes, when present, go into a NOTE section.
func BuildDetailedBody(goal domain.Goal, stats Stats, last7, last30 Summary, headline string, notes []string) string {
	targetDate := "N/A"
	if goal.TargetDate != nil {
		targetDate = goal.TargetDate.String()
	}
	daysLeft := "N/A"
	if stats.DaysLeft != nil {
		daysLeft = strconv.Itoa(*stats.DaysLeft)
	}

	lines := []string{
		fmt.Sprintf("Hi %s,", goal.Owner.Username),
		"",
		headline,
		"",
		rule,
		"GOAL DETAILS",
		rule,
		"Goal Name       : " + goal.Name,
		"Target Amount   : " + rupee + whole(stats.Target),
		"Saved Amount    : " + rupee + whole(stats.Saved),
		"Remaining       : " + rupee + whole(stats.Remaining),
		"Progress        : " + percent(stats.Percent) + "%",
		"Target Date     : " + targetDate,
		"Days Left       : " + daysLeft,
		"Status          : " + stats.Status,
		"",
		rule,
		"PACE & RECOMMENDATION",
		rule,
	}

	if stats.DailyPace == nil {
		lines = append(lines, "Required pace   : N/A")
	} else {
		lines = append(lines,
			"Required pace   : ~"+rupee+whole(*stats.DailyPace)+"/day",
			"Monthly pace    : ~"+rupee+whole(*stats.MonthlyPace)+"/month",
		)
	}

	lines = append(lines,
		"",
		rule,
		"RECENT CONTRIBUTIONS SUMMARY",
		rule,
		summaryLine("Last 7 days  : ", last7),
		summaryLine("Last 30 days : ", last30),
		"",
	)

	if len(notes) > 0 {
		lines = append(lines, rule, "NOTE", rule)
		lines = append(lines, notes...)
		lines = append(lines, "")
	}

	lines = append(lines, "Regards,", "Finance App")
	return strings.Join(lines, "\n")
}

func summaryLine(prefix string, s Summary) string {
	last := "-"
	if s.Last != nil {
		last = s.Last.String()
	}
	return fmt.Sprintf("%s%d contributions | Total %s%s | Last on %s", prefix, s.Count, rupee, whole(s.Total), last)
}
