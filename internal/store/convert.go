package store

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
)

func dateColumn(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func optionalDateColumn(d *civil.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := dateColumn(*d)
	return &t
}

func optionalDate(t *time.Time) *civil.Date {
	if t == nil {
		return nil
	}
	d := civil.DateOf(*t)
	return &d
}

func ownerOf(u User) domain.Owner {
	return domain.Owner{UserID: u.ID, Username: u.Username, Email: u.Email}
}

func (g SavingsGoal) toDomain() domain.Goal {
	owner := ownerOf(g.User)
	owner.UserID = g.UserID
	return domain.Goal{
		ID:           g.ID,
		Owner:        owner,
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		SavedAmount:  g.SavedAmount,
		TargetDate:   optionalDate(g.TargetDate),
		CreatedAt:    g.CreatedAt,
	}
}

func (f EmergencyFund) toDomain() domain.Fund {
	owner := ownerOf(f.User)
	owner.UserID = f.UserID
	return domain.Fund{
		ID:                 f.ID,
		Owner:              owner,
		Name:               f.Name,
		TargetAmount:       f.TargetAmount,
		SavedAmount:        f.SavedAmount,
		Interval:           domain.ParseInterval(f.Interval),
		LastContributionAt: f.LastContributionAt,
		CreatedAt:          f.CreatedAt,
	}
}

func (e Expense) toDomain() domain.Expense {
	return domain.Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount,
		Date:        civil.DateOf(e.ExpenseDate),
		Direction:   domain.Direction(e.Direction),
		Source:      domain.ExpenseSource(e.Source),
		RawText:     e.RawText,
	}
}

func (e NotificationEvent) toDomain() domain.NotificationEvent {
	return domain.NotificationEvent{
		ID: e.ID,
		Ref: domain.EventRef{
			UserID:     e.UserID,
			TargetKind: domain.TargetKind(e.TargetKind),
			TargetID:   e.TargetID,
			Key:        e.EventKey,
		},
		EventDate: civil.DateOf(e.EventDate),
		Channel:   e.Channel,
		Status:    domain.EventStatus(e.Status),
		Meta:      map[string]interface{}(e.Meta),
		CreatedAt: e.CreatedAt,
	}
}
