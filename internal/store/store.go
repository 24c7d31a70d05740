// Package store persists users, savings goals, emergency funds, expenses and
// the notification event log.
package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a record does not exist or belongs to another user.
var ErrNotFound = errors.New("store: record not found")

// ErrExceedsTarget is returned when a contribution would take the saved
// amount past a positive target.
var ErrExceedsTarget = errors.New("store: saved amount would exceed target")

// exceedsTarget reports whether adding amount to saved overshoots target.
// A zero target has no upper bound.
func exceedsTarget(saved, amount, target decimal.Decimal) bool {
	return target.IsPositive() && saved.Add(amount).GreaterThan(target)
}

// Users stores account profiles.
type Users interface {
	UpsertUser(ctx context.Context, owner domain.Owner) (domain.Owner, error)
	GetUser(ctx context.Context, userID string) (domain.Owner, error)
}

// Goals stores savings goals and their contributions.
type Goals interface {
	ListGoals(ctx context.Context) ([]domain.Goal, error)
	ListUserGoals(ctx context.Context, userID string) ([]domain.Goal, error)
	GetGoal(ctx context.Context, userID, goalID string) (domain.Goal, error)
	// CreateGoal inserts goal; a positive starting balance counts as a
	// contribution made on day.
	CreateGoal(ctx context.Context, goal domain.Goal, day civil.Date) (domain.Goal, error)
	// AddContribution records amount on day and raises the goal's saved
	// amount in one step. It returns the updated goal.
	AddContribution(ctx context.Context, userID, goalID string, amount decimal.Decimal, day civil.Date) (domain.Goal, error)
	ContributionsBetween(ctx context.Context, goalID string, from, to civil.Date) ([]domain.Contribution, error)
	HasContributionBetween(ctx context.Context, goalID string, from, to civil.Date) (bool, error)
}

// Funds stores emergency funds.
type Funds interface {
	ListFunds(ctx context.Context) ([]domain.Fund, error)
	ListUserFunds(ctx context.Context, userID string) ([]domain.Fund, error)
	GetFund(ctx context.Context, userID, fundID string) (domain.Fund, error)
	CreateFund(ctx context.Context, fund domain.Fund) (domain.Fund, error)
	// AddContribution raises the saved amount and stamps the last
	// contribution time. It returns the updated fund.
	AddContribution(ctx context.Context, userID, fundID string, amount decimal.Decimal, at time.Time) (domain.Fund, error)
}

// Expenses stores accepted expense rows.
type Expenses interface {
	InsertExpenses(ctx context.Context, expenses []domain.Expense) (int, error)
	ListExpenses(ctx context.Context, userID string, limit int) ([]domain.Expense, error)
}

// Events is the notification log. Claim and Finish follow notify.EventLog.
type Events interface {
	Claim(ctx context.Context, ref domain.EventRef, day civil.Date) (bool, error)
	Finish(ctx context.Context, ref domain.EventRef, status domain.EventStatus, meta map[string]interface{}) error
	ListEvents(ctx context.Context, userID, targetID string) ([]domain.NotificationEvent, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users    Users
	Goals    Goals
	Funds    Funds
	Expenses Expenses
	Events   Events
}
