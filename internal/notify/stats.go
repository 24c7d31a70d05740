package notify

import (
	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
)

// Goal status labels.
const (
	StatusOnTrack        = "On Track"
	StatusBehindSchedule = "Behind Schedule"
)

var (
	hundred         = decimal.NewFromInt(100)
	daysPerMonth    = decimal.NewFromInt(30)
	behindPercent   = decimal.NewFromInt(50)
	behindDaysLimit = 15
)

// Stats are the figures derived from a goal on a given day.
type Stats struct {
	Target    decimal.Decimal
	Saved     decimal.Decimal
	Remaining decimal.Decimal
	// Percent is saved/target*100 rounded to two places, zero for a zero target.
	Percent decimal.Decimal
	// DaysLeft is nil when the goal has no target date.
	DaysLeft *int
	// DailyPace and MonthlyPace are nil when no pace can be computed.
	DailyPace   *decimal.Decimal
	MonthlyPace *decimal.Decimal
	Status      string
}

// ComputeStats derives progress, deadline and pace figures for goal as of today.
func ComputeStats(goal domain.Goal, today civil.Date) Stats {
	s := Stats{
		Target:    goal.TargetAmount,
		Saved:     goal.SavedAmount,
		Remaining: decimal.Max(goal.TargetAmount.Sub(goal.SavedAmount), decimal.Zero),
		Percent:   decimal.Zero,
		Status:    StatusOnTrack,
	}
	if goal.TargetAmount.IsPositive() {
		s.Percent = goal.SavedAmount.Div(goal.TargetAmount).Mul(hundred).Round(2)
	}
	if goal.TargetDate == nil {
		return s
	}

	days := goal.TargetDate.DaysSince(today)
	s.DaysLeft = &days
	if days <= 0 {
		return s
	}
	if s.Remaining.IsPositive() {
		daily := s.Remaining.Div(decimal.NewFromInt(int64(days)))
		monthly := daily.Mul(daysPerMonth)
		s.DailyPace = &daily
		s.MonthlyPace = &monthly
	}
	if s.Percent.LessThan(behindPercent) && days < behindDaysLimit {
		s.Status = StatusBehindSchedule
	}
	return s
}

// Summary aggregates the contributions of a trailing window.
type Summary struct {
	Days  int
	Count int
	Total decimal.Decimal
	Last  *civil.Date
}

// Summarize counts contributions dated within [today-days, today].
func Summarize(contributions []domain.Contribution, today civil.Date, days int) Summary {
	from := today.AddDays(-days)
	sum := Summary{Days: days, Total: decimal.Zero}
	for _, c := range contributions {
		if c.Date.Before(from) || c.Date.After(today) {
			continue
		}
		sum.Count++
		sum.Total = sum.Total.Add(c.Amount)
		if sum.Last == nil || c.Date.After(*sum.Last) {
			d := c.Date
			sum.Last = &d
		}
	}
	return sum
}
