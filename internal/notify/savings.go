package notify

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
)

// goalEnvelope wraps a goal email built from BuildDetailedBody.
func (n *Notifier) goalEnvelope(goal domain.Goal, key string, today civil.Date, subject, headline string, notes []string, meta map[string]interface{}) envelope {
	return envelope{
		owner:  goal.Owner,
		kind:   domain.TargetGoal,
		target: goal.ID,
		key:    key,
		day:    today,
		compose: func(ctx context.Context) (Message, map[string]interface{}, error) {
			body, err := n.goalBody(ctx, goal, today, headline, notes)
			if err != nil {
				return Message{}, meta, err
			}
			return Message{Subject: subject, Text: body}, meta, nil
		},
	}
}

func (n *Notifier) goalBody(ctx context.Context, goal domain.Goal, today civil.Date, headline string, notes []string) (string, error) {
	stats := ComputeStats(goal, today)
	var contributions []domain.Contribution
	if n.contributions != nil {
		var err error
		contributions, err = n.contributions.ContributionsBetween(ctx, goal.ID, today.AddDays(-30), today)
		if err != nil {
			return "", fmt.Errorf("loading contributions for goal %s: %w", goal.ID, err)
		}
	}
	last7 := Summarize(contributions, today, 7)
	last30 := Summarize(contributions, today, 30)
	return BuildDetailedBody(goal, stats, last7, last30, headline, notes), nil
}

// ContributionAdded announces money added to a goal. Keyed per day, goal
// and whole amount, so repeating the same top-up on the same day is silent.
func (n *Notifier) ContributionAdded(ctx context.Context, goal domain.Goal, added decimal.Decimal, today civil.Date) Outcome {
	amount := whole(added)
	return n.deliver(ctx, n.goalEnvelope(goal,
		ContributionKey(today, goal.ID, added),
		today,
		fmt.Sprintf("Savings updated: %s%s added to \"%s\"", rupee, amount, goal.Name),
		"New saving added successfully.",
		[]string{"Added Amount: " + rupee + amount},
		map[string]interface{}{"type": "contribution_added", "added": toFloat(added)},
	))
}

// CheckThresholds sends one milestone email per crossed threshold.
func (n *Notifier) CheckThresholds(ctx context.Context, goal domain.Goal, today civil.Date) []Outcome {
	stats := ComputeStats(goal, today)
	var outcomes []Outcome
	for _, threshold := range ProgressThresholds {
		if stats.Percent.LessThan(decimal.NewFromInt(int64(threshold))) {
			continue
		}
		pct := percent(stats.Percent)
		outcomes = append(outcomes, n.deliver(ctx, n.goalEnvelope(goal,
			ProgressKey(threshold),
			today,
			fmt.Sprintf("You crossed %d%% on \"%s\"", threshold, goal.Name),
			fmt.Sprintf("You crossed the %d%% milestone.", threshold),
			[]string{fmt.Sprintf("Milestone reached: %d%%", threshold), "Current progress: " + pct + "%"},
			map[string]interface{}{"type": "progress", "pct": toFloat(stats.Percent), "threshold": threshold},
		)))
	}
	return outcomes
}

// GoalAchieved congratulates the owner. Sent once per goal.
func (n *Notifier) GoalAchieved(ctx context.Context, goal domain.Goal, today civil.Date) Outcome {
	return n.deliver(ctx, n.goalEnvelope(goal,
		KeyGoalAchieved,
		today,
		fmt.Sprintf("Congratulations! You achieved \"%s\"", goal.Name),
		"Congratulations! Your savings goal is achieved.",
		[]string{"This goal is now completed.", "Achieved Date: " + today.String()},
		map[string]interface{}{"type": "goal_achieved", "saved": toFloat(goal.SavedAmount)},
	))
}

// GoalContribution runs every notification due after added was saved to
// goal. goal must already reflect the new saved amount.
func (n *Notifier) GoalContribution(ctx context.Context, goal domain.Goal, added decimal.Decimal, today civil.Date) {
	if !added.IsPositive() {
		return
	}
	n.ContributionAdded(ctx, goal, added, today)
	n.CheckThresholds(ctx, goal, today)
	if goal.TargetAmount.IsPositive() && goal.SavedAmount.GreaterThanOrEqual(goal.TargetAmount) {
		n.GoalAchieved(ctx, goal, today)
	}
}
