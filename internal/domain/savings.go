package domain

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Owner is the user a goal or fund belongs to, as far as notifications care.
type Owner struct {
	UserID   string
	Username string
	Email    string
}

// Goal is a read-only snapshot of a savings goal.
type Goal struct {
	ID           string
	Owner        Owner
	Name         string
	TargetAmount decimal.Decimal
	SavedAmount  decimal.Decimal
	TargetDate   *civil.Date
	CreatedAt    time.Time
}

// Interval is the contribution cadence of an emergency fund.
type Interval string

const (
	IntervalWeekly     Interval = "weekly"
	IntervalMonthly    Interval = "monthly"
	IntervalQuarterly  Interval = "quarterly"
	IntervalHalfYearly Interval = "halfyearly"
	IntervalYearly     Interval = "yearly"
)

// ParseInterval normalizes user input. "half-yearly" and "half_yearly" are
// accepted for IntervalHalfYearly; unknown values are returned lower-cased
// and fall back to a monthly cadence in Days.
func ParseInterval(s string) Interval {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "half-yearly", "half_yearly", "half yearly":
		return IntervalHalfYearly
	}
	return Interval(v)
}

// Days is the number of days one interval spans.
func (i Interval) Days() int {
	switch ParseInterval(string(i)) {
	case IntervalWeekly:
		return 7
	case IntervalMonthly:
		return 30
	case IntervalQuarterly:
		return 90
	case IntervalHalfYearly:
		return 182
	case IntervalYearly:
		return 365
	default:
		return 30
	}
}

// Valid reports whether i is one of the known cadences.
func (i Interval) Valid() bool {
	switch ParseInterval(string(i)) {
	case IntervalWeekly, IntervalMonthly, IntervalQuarterly, IntervalHalfYearly, IntervalYearly:
		return true
	}
	return false
}

// Fund is a read-only snapshot of an emergency fund.
type Fund struct {
	ID                 string
	Owner              Owner
	Name               string
	TargetAmount       decimal.Decimal
	SavedAmount        decimal.Decimal
	Interval           Interval
	LastContributionAt *time.Time
	CreatedAt          time.Time
}

// Contribution is money added to a goal or fund on a given day.
type Contribution struct {
	ID       string
	TargetID string
	Amount   decimal.Decimal
	Date     civil.Date
}
