package notify

import (
	"context"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
)

type fakeEventLog struct {
	mu     sync.Mutex
	events map[domain.EventRef]domain.NotificationEvent
}

func newFakeEventLog() *fakeEventLog {
	return &fakeEventLog{events: make(map[domain.EventRef]domain.NotificationEvent)}
}

func (f *fakeEventLog) Claim(ctx context.Context, ref domain.EventRef, day civil.Date) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[ref]; ok {
		return false, nil
	}
	f.events[ref] = domain.NotificationEvent{Ref: ref, EventDate: day, Status: domain.EventPending}
	return true, nil
}

func (f *fakeEventLog) Finish(ctx context.Context, ref domain.EventRef, status domain.EventStatus, meta map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := f.events[ref]
	ev.Status = status
	ev.Meta = meta
	f.events[ref] = ev
	return nil
}

func (f *fakeEventLog) get(ref domain.EventRef) (domain.NotificationEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[ref]
	return ev, ok
}

func (f *fakeEventLog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type mockMailer struct {
	mu       sync.Mutex
	sent     []Message
	SendFunc func(ctx context.Context, msg Message) error
}

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

type mockContributions struct {
	byGoal map[string][]domain.Contribution
	err    error
}

func (m *mockContributions) ContributionsBetween(ctx context.Context, goalID string, from, to civil.Date) ([]domain.Contribution, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Contribution
	for _, c := range m.byGoal[goalID] {
		if !c.Date.Before(from) && !c.Date.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContributions) HasContributionBetween(ctx context.Context, goalID string, from, to civil.Date) (bool, error) {
	cs, err := m.ContributionsBetween(ctx, goalID, from, to)
	return len(cs) > 0, err
}

type staticGoals []domain.Goal

func (s staticGoals) ListGoals(ctx context.Context) ([]domain.Goal, error) { return s, nil }

type staticFunds []domain.Fund

func (s staticFunds) ListFunds(ctx context.Context) ([]domain.Fund, error) { return s, nil }

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *civil.Date {
	d := day(s)
	return &d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testGoal(id string, target, saved string, targetDate *civil.Date) domain.Goal {
	return domain.Goal{
		ID:           id,
		Owner:        domain.Owner{UserID: "u1", Username: "asha", Email: "asha@example.com"},
		Name:         "Trip to Goa",
		TargetAmount: dec(target),
		SavedAmount:  dec(saved),
		TargetDate:   targetDate,
	}
}
