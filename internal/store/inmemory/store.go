// Package inmemory provides map-backed implementations of the store
// repositories. Data is lost on restart; it backs development mode and tests.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// New returns a Store whose repositories share one set of users.
func New(retryFailed bool) *store.Store {
	users := &Users{users: make(map[string]domain.Owner)}
	return &store.Store{
		Users:    users,
		Goals:    &Goals{users: users, goals: make(map[string]*domain.Goal)},
		Funds:    &Funds{users: users, funds: make(map[string]*domain.Fund)},
		Expenses: &Expenses{},
		Events:   NewEvents(retryFailed),
	}
}

// Users is an in-memory user table.
type Users struct {
	mu    sync.RWMutex
	users map[string]domain.Owner
}

func (u *Users) UpsertUser(ctx context.Context, owner domain.Owner) (domain.Owner, error) {
	if owner.UserID == "" {
		return domain.Owner{}, fmt.Errorf("user ID is required")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[owner.UserID] = owner
	return owner, nil
}

func (u *Users) GetUser(ctx context.Context, userID string) (domain.Owner, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	owner, ok := u.users[userID]
	if !ok {
		return domain.Owner{}, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	return owner, nil
}

// owner resolves the current profile, falling back to the bare ID.
func (u *Users) owner(userID string) domain.Owner {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if o, ok := u.users[userID]; ok {
		return o
	}
	return domain.Owner{UserID: userID}
}

// Goals is an in-memory goal table with its contributions.
type Goals struct {
	mu            sync.RWMutex
	users         *Users
	goals         map[string]*domain.Goal
	contributions []domain.Contribution
}

func (g *Goals) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	return g.list(func(domain.Goal) bool { return true }), nil
}

func (g *Goals) ListUserGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	return g.list(func(goal domain.Goal) bool { return goal.Owner.UserID == userID }), nil
}

func (g *Goals) list(keep func(domain.Goal) bool) []domain.Goal {
	g.mu.RLock()
	defer g.mu.RUnlock()
	result := []domain.Goal{}
	for _, goal := range g.goals {
		if keep(*goal) {
			result = append(result, g.withOwner(*goal))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (g *Goals) withOwner(goal domain.Goal) domain.Goal {
	goal.Owner = g.users.owner(goal.Owner.UserID)
	return goal
}

func (g *Goals) GetGoal(ctx context.Context, userID, goalID string) (domain.Goal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	goal, ok := g.goals[goalID]
	if !ok || goal.Owner.UserID != userID {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", goalID, store.ErrNotFound)
	}
	return g.withOwner(*goal), nil
}

func (g *Goals) CreateGoal(ctx context.Context, goal domain.Goal, day civil.Date) (domain.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	stored := goal
	g.goals[goal.ID] = &stored
	if goal.SavedAmount.IsPositive() {
		g.contributions = append(g.contributions, domain.Contribution{
			ID: uuid.NewString(), TargetID: goal.ID, Amount: goal.SavedAmount, Date: day,
		})
	}
	return g.withOwner(stored), nil
}

func (g *Goals) AddContribution(ctx context.Context, userID, goalID string, amount decimal.Decimal, day civil.Date) (domain.Goal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	goal, ok := g.goals[goalID]
	if !ok || goal.Owner.UserID != userID {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", goalID, store.ErrNotFound)
	}
	if goal.TargetAmount.IsPositive() && goal.SavedAmount.Add(amount).GreaterThan(goal.TargetAmount) {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", goalID, store.ErrExceedsTarget)
	}
	goal.SavedAmount = goal.SavedAmount.Add(amount)
	g.contributions = append(g.contributions, domain.Contribution{
		ID: uuid.NewString(), TargetID: goalID, Amount: amount, Date: day,
	})
	return g.withOwner(*goal), nil
}

func (g *Goals) ContributionsBetween(ctx context.Context, goalID string, from, to civil.Date) ([]domain.Contribution, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var result []domain.Contribution
	for _, c := range g.contributions {
		if c.TargetID == goalID && !c.Date.Before(from) && !c.Date.After(to) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (g *Goals) HasContributionBetween(ctx context.Context, goalID string, from, to civil.Date) (bool, error) {
	cs, err := g.ContributionsBetween(ctx, goalID, from, to)
	return len(cs) > 0, err
}

// Funds is an in-memory emergency fund table.
type Funds struct {
	mu    sync.RWMutex
	users *Users
	funds map[string]*domain.Fund
}

func (f *Funds) ListFunds(ctx context.Context) ([]domain.Fund, error) {
	return f.list(func(domain.Fund) bool { return true }), nil
}

func (f *Funds) ListUserFunds(ctx context.Context, userID string) ([]domain.Fund, error) {
	return f.list(func(fund domain.Fund) bool { return fund.Owner.UserID == userID }), nil
}

func (f *Funds) list(keep func(domain.Fund) bool) []domain.Fund {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := []domain.Fund{}
	for _, fund := range f.funds {
		if keep(*fund) {
			result = append(result, f.withOwner(*fund))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (f *Funds) withOwner(fund domain.Fund) domain.Fund {
	fund.Owner = f.users.owner(fund.Owner.UserID)
	return fund
}

func (f *Funds) GetFund(ctx context.Context, userID, fundID string) (domain.Fund, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fund, ok := f.funds[fundID]
	if !ok || fund.Owner.UserID != userID {
		return domain.Fund{}, fmt.Errorf("fund %s: %w", fundID, store.ErrNotFound)
	}
	return f.withOwner(*fund), nil
}

func (f *Funds) CreateFund(ctx context.Context, fund domain.Fund) (domain.Fund, error) {
	if fund.ID == "" {
		fund.ID = uuid.NewString()
	}
	if fund.CreatedAt.IsZero() {
		fund.CreatedAt = time.Now()
	}
	fund.Interval = domain.ParseInterval(string(fund.Interval))

	f.mu.Lock()
	defer f.mu.Unlock()
	stored := fund
	f.funds[fund.ID] = &stored
	return f.withOwner(stored), nil
}

func (f *Funds) AddContribution(ctx context.Context, userID, fundID string, amount decimal.Decimal, at time.Time) (domain.Fund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fund, ok := f.funds[fundID]
	if !ok || fund.Owner.UserID != userID {
		return domain.Fund{}, fmt.Errorf("fund %s: %w", fundID, store.ErrNotFound)
	}
	if fund.TargetAmount.IsPositive() && fund.SavedAmount.Add(amount).GreaterThan(fund.TargetAmount) {
		return domain.Fund{}, fmt.Errorf("fund %s: %w", fundID, store.ErrExceedsTarget)
	}
	fund.SavedAmount = fund.SavedAmount.Add(amount)
	fund.LastContributionAt = &at
	return f.withOwner(*fund), nil
}

// Expenses is an append-only in-memory expense list.
type Expenses struct {
	mu       sync.RWMutex
	expenses []domain.Expense
}

func (e *Expenses) InsertExpenses(ctx context.Context, expenses []domain.Expense) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, exp := range expenses {
		if exp.ID == "" {
			exp.ID = uuid.NewString()
		}
		e.expenses = append(e.expenses, exp)
	}
	return len(expenses), nil
}

func (e *Expenses) ListExpenses(ctx context.Context, userID string, limit int) ([]domain.Expense, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := []domain.Expense{}
	for i := len(e.expenses) - 1; i >= 0; i-- {
		if e.expenses[i].UserID != userID {
			continue
		}
		result = append(result, e.expenses[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

var (
	_ store.Users    = (*Users)(nil)
	_ store.Goals    = (*Goals)(nil)
	_ store.Funds    = (*Funds)(nil)
	_ store.Expenses = (*Expenses)(nil)
)
