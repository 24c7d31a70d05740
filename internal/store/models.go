package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an account profile. IDs are issued by the identity provider.
type User struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Username  string `gorm:"size:150;uniqueIndex;not null"`
	Email     string `gorm:"size:254"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SavingsGoal struct {
	ID           string          `gorm:"type:uuid;primaryKey"`
	UserID       string          `gorm:"type:uuid;not null;index"`
	User         User            `gorm:"constraint:OnDelete:CASCADE"`
	Name         string          `gorm:"size:200;not null"`
	TargetAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SavedAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TargetDate   *time.Time      `gorm:"type:date"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SavingsContribution struct {
	ID               string          `gorm:"type:uuid;primaryKey"`
	GoalID           string          `gorm:"type:uuid;not null;index:idx_goal_contribution_date,priority:1"`
	UserID           string          `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ContributionDate time.Time       `gorm:"type:date;not null;index:idx_goal_contribution_date,priority:2"`
	CreatedAt        time.Time
}

type EmergencyFund struct {
	ID                 string          `gorm:"type:uuid;primaryKey"`
	UserID             string          `gorm:"type:uuid;not null;index"`
	User               User            `gorm:"constraint:OnDelete:CASCADE"`
	Name               string          `gorm:"size:200;not null"`
	TargetAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SavedAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Interval           string          `gorm:"size:20;not null;default:monthly"`
	LastContributionAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type EmergencyContribution struct {
	ID            string          `gorm:"type:uuid;primaryKey"`
	FundID        string          `gorm:"type:uuid;not null;index"`
	UserID        string          `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ContributedAt time.Time       `gorm:"not null"`
}

type Expense struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	UserID      string          `gorm:"type:uuid;not null;index:idx_user_expense_date,priority:1"`
	Description string          `gorm:"size:500"`
	Category    string          `gorm:"size:50;index"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ExpenseDate time.Time       `gorm:"type:date;not null;index:idx_user_expense_date,priority:2"`
	Direction   string          `gorm:"size:6;not null;default:DEBIT"`
	Source      string          `gorm:"size:10;not null;default:MANUAL"`
	RawText     string          `gorm:"type:text"`
	CreatedAt   time.Time
}

// NotificationEvent is one notification attempt. The identity index is what
// makes Claim atomic.
type NotificationEvent struct {
	ID         string            `gorm:"type:uuid;primaryKey"`
	UserID     string            `gorm:"type:uuid;not null;uniqueIndex:idx_notification_identity,priority:1"`
	TargetKind string            `gorm:"size:10;not null;uniqueIndex:idx_notification_identity,priority:2"`
	TargetID   string            `gorm:"type:uuid;not null;uniqueIndex:idx_notification_identity,priority:3"`
	EventKey   string            `gorm:"size:100;not null;uniqueIndex:idx_notification_identity,priority:4"`
	EventDate  time.Time         `gorm:"type:date;not null"`
	Channel    string            `gorm:"size:20;not null;default:email"`
	Status     string            `gorm:"size:10;not null;index"`
	Meta       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (m *User) BeforeCreate(*gorm.DB) error                  { assignID(&m.ID); return nil }
func (m *SavingsGoal) BeforeCreate(*gorm.DB) error           { assignID(&m.ID); return nil }
func (m *SavingsContribution) BeforeCreate(*gorm.DB) error   { assignID(&m.ID); return nil }
func (m *EmergencyFund) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *EmergencyContribution) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *Expense) BeforeCreate(*gorm.DB) error               { assignID(&m.ID); return nil }
func (m *NotificationEvent) BeforeCreate(*gorm.DB) error     { assignID(&m.ID); return nil }
