package notify

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/rs/zerolog"
)

// GoalLister lists every savings goal with its owner.
type GoalLister interface {
	ListGoals(ctx context.Context) ([]domain.Goal, error)
}

// FundLister lists every emergency fund with its owner.
type FundLister interface {
	ListFunds(ctx context.Context) ([]domain.Fund, error)
}

// ContributionChecker reports whether a goal received money within [from, to].
type ContributionChecker interface {
	HasContributionBetween(ctx context.Context, goalID string, from, to civil.Date) (bool, error)
}

// RunReport summarises one scheduled check.
type RunReport struct {
	Task    string `json:"task"`
	Day     string `json:"day"`
	Checked int    `json:"checked"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	// Note explains a run that did nothing, e.g. outside month end.
	Note string `json:"note,omitempty"`
}

func (r *RunReport) add(o Outcome) {
	switch o {
	case Sent:
		r.Sent++
	case Failed:
		r.Failed++
	default:
		r.Skipped++
	}
}

// Scheduler runs the daily batch checks. A failure for one goal or fund is
// logged and counted; it never stops the batch.
type Scheduler struct {
	notifier      *Notifier
	goals         GoalLister
	funds         FundLister
	contributions ContributionChecker
	location      *time.Location
	log           zerolog.Logger
}

// NewScheduler wires a Scheduler. loc is the calendar the funds' timestamps
// are read in.
func NewScheduler(n *Notifier, goals GoalLister, funds FundLister, contributions ContributionChecker, loc *time.Location, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		notifier:      n,
		goals:         goals,
		funds:         funds,
		contributions: contributions,
		location:      loc,
		log:           log,
	}
}

// Today is the current calendar day in the scheduler's location.
func (s *Scheduler) Today() civil.Date {
	return civil.DateOf(time.Now().In(s.location))
}

// DeadlineReminders emails goals whose target date is 30, 15, 5, 4, 3, 2
// or 1 days away.
func (s *Scheduler) DeadlineReminders(ctx context.Context, today civil.Date) (RunReport, error) {
	report := RunReport{Task: "deadline_reminders", Day: today.String()}
	goals, err := s.goals.ListGoals(ctx)
	if err != nil {
		return report, fmt.Errorf("DeadlineReminders: listing goals: %w", err)
	}

	for _, goal := range goals {
		if goal.TargetDate == nil {
			continue
		}
		days := goal.TargetDate.DaysSince(today)
		if !isReminderDay(days) {
			continue
		}
		report.Checked++
		report.add(s.notifier.deliver(ctx, s.notifier.goalEnvelope(goal,
			DeadlineKey(days),
			today,
			fmt.Sprintf("Reminder: %d day(s) left for \"%s\"", days, goal.Name),
			fmt.Sprintf("Target date reminder: %d day(s) remaining.", days),
			[]string{fmt.Sprintf("Reminder type: D-%d", days)},
			map[string]interface{}{"type": "deadline", "days_left": days},
		)))
	}
	s.logReport(report)
	return report, nil
}

// MonthEndNoContribution emails goals that received nothing this month. It
// only acts on the last calendar day of the month.
func (s *Scheduler) MonthEndNoContribution(ctx context.Context, today civil.Date) (RunReport, error) {
	report := RunReport{Task: "month_end_no_contribution", Day: today.String()}
	if !isLastDayOfMonth(today) {
		report.Note = "not month end"
		return report, nil
	}

	goals, err := s.goals.ListGoals(ctx)
	if err != nil {
		return report, fmt.Errorf("MonthEndNoContribution: listing goals: %w", err)
	}

	monthStart := civil.Date{Year: today.Year, Month: today.Month, Day: 1}
	month := time.Date(today.Year, today.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")

	for _, goal := range goals {
		report.Checked++
		if goal.Owner.Email == "" {
			report.add(Skipped)
			continue
		}
		contributed, err := s.contributions.HasContributionBetween(ctx, goal.ID, monthStart, today)
		if err != nil {
			s.log.Error().Err(err).Str("goal_id", goal.ID).Msg("failed to check month contributions")
			report.add(Failed)
			continue
		}
		if contributed {
			report.add(Skipped)
			continue
		}
		report.add(s.notifier.deliver(ctx, s.notifier.goalEnvelope(goal,
			MonthEndKey(today),
			today,
			fmt.Sprintf("No saving added in %s for \"%s\"", month, goal.Name),
			fmt.Sprintf("No contribution recorded in %s.", month),
			[]string{
				"Month-end alert: you did not add any savings this month.",
				"Next step: add a contribution tomorrow to stay consistent.",
			},
			map[string]interface{}{"type": "month_end", "month": monthTag(today)},
		)))
	}
	s.logReport(report)
	return report, nil
}

// EmergencyIntervalCheck reminds owners of funds that went longer than
// their interval without a contribution.
func (s *Scheduler) EmergencyIntervalCheck(ctx context.Context, today civil.Date) (RunReport, error) {
	report := RunReport{Task: "emergency_interval_check", Day: today.String()}
	funds, err := s.funds.ListFunds(ctx)
	if err != nil {
		return report, fmt.Errorf("EmergencyIntervalCheck: listing funds: %w", err)
	}

	for _, fund := range funds {
		overdue, ok := DaysOverdue(fund, today, s.location)
		if !ok {
			continue
		}
		report.Checked++
		report.add(s.notifier.FundMissedInterval(ctx, fund, overdue, today))
	}
	s.logReport(report)
	return report, nil
}

func (s *Scheduler) logReport(r RunReport) {
	s.log.Info().
		Str("task", r.Task).
		Str("day", r.Day).
		Int("checked", r.Checked).
		Int("sent", r.Sent).
		Int("skipped", r.Skipped).
		Int("failed", r.Failed).
		Msg("scheduled check finished")
}

func isLastDayOfMonth(d civil.Date) bool {
	return d.AddDays(1).Day == 1
}
