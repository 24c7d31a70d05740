package notify

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Days before a goal's target date on which a reminder goes out.
var DeadlineReminderDays = []int{30, 15, 5, 4, 3, 2, 1}

// Progress percentages that trigger a milestone email.
var ProgressThresholds = []int{80, 90}

// KeyGoalAchieved is sent once per goal.
const KeyGoalAchieved = "GOAL_ACHIEVED"

func ContributionKey(day civil.Date, goalID string, amount decimal.Decimal) string {
	return fmt.Sprintf("CONTRIB_%s_%s_%s", day, goalID, whole(amount))
}

func ProgressKey(threshold int) string {
	return fmt.Sprintf("PROGRESS_%d", threshold)
}

func DeadlineKey(daysLeft int) string {
	return fmt.Sprintf("DEADLINE_D%d", daysLeft)
}

func MonthEndKey(day civil.Date) string {
	return fmt.Sprintf("NO_CONTRIB_MONTHEND_%s", monthTag(day))
}

func FundCreatedKey(fundID string) string {
	return "EM_CREATED_" + fundID
}

func FundContributionKey(day civil.Date, fundID string, amount decimal.Decimal) string {
	return fmt.Sprintf("EM_ADD_%s_%s_%s", day, fundID, whole(amount))
}

func FundMissedKey(day civil.Date, fundID string) string {
	return fmt.Sprintf("EM_MISSED_%s_%s", day, fundID)
}

func monthTag(day civil.Date) string {
	return fmt.Sprintf("%04d_%02d", day.Year, int(day.Month))
}

func isReminderDay(days int) bool {
	for _, d := range DeadlineReminderDays {
		if d == days {
			return true
		}
	}
	return false
}
