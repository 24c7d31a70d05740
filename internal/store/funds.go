package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FundRepository stores emergency funds in Postgres.
type FundRepository struct {
	db *gorm.DB
}

func (r *FundRepository) ListFunds(ctx context.Context) ([]domain.Fund, error) {
	var rows []EmergencyFund
	if err := r.db.WithContext(ctx).Preload("User").Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ListFunds: %w", err)
	}
	return fundsToDomain(rows), nil
}

func (r *FundRepository) ListUserFunds(ctx context.Context, userID string) ([]domain.Fund, error) {
	var rows []EmergencyFund
	err := r.db.WithContext(ctx).Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ListUserFunds: %w", err)
	}
	return fundsToDomain(rows), nil
}

func (r *FundRepository) GetFund(ctx context.Context, userID, fundID string) (domain.Fund, error) {
	var row EmergencyFund
	err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND user_id = ?", fundID, userID).
		First(&row).Error
	if err != nil {
		return domain.Fund{}, fmt.Errorf("GetFund: %w", notFound(err))
	}
	return row.toDomain(), nil
}

func (r *FundRepository) CreateFund(ctx context.Context, fund domain.Fund) (domain.Fund, error) {
	row := EmergencyFund{
		ID:           fund.ID,
		UserID:       fund.Owner.UserID,
		Name:         fund.Name,
		TargetAmount: fund.TargetAmount,
		SavedAmount:  fund.SavedAmount,
		Interval:     string(domain.ParseInterval(string(fund.Interval))),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(&row).Error; err != nil {
			return err
		}
		return tx.Preload("User").First(&row, "id = ?", row.ID).Error
	})
	if err != nil {
		return domain.Fund{}, fmt.Errorf("CreateFund: %w", err)
	}
	return row.toDomain(), nil
}

func (r *FundRepository) AddContribution(ctx context.Context, userID, fundID string, amount decimal.Decimal, at time.Time) (domain.Fund, error) {
	var row EmergencyFund
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", fundID, userID).
			First(&row).Error
		if err != nil {
			return notFound(err)
		}
		if exceedsTarget(row.SavedAmount, amount, row.TargetAmount) {
			return ErrExceedsTarget
		}
		row.SavedAmount = row.SavedAmount.Add(amount)
		row.LastContributionAt = &at
		err = tx.Model(&row).Updates(map[string]interface{}{
			"saved_amount":         row.SavedAmount,
			"last_contribution_at": at,
		}).Error
		if err != nil {
			return err
		}
		c := EmergencyContribution{FundID: row.ID, UserID: row.UserID, Amount: amount, ContributedAt: at}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return tx.First(&row.User, "id = ?", row.UserID).Error
	})
	if err != nil {
		return domain.Fund{}, fmt.Errorf("AddContribution: %w", err)
	}
	return row.toDomain(), nil
}

func fundsToDomain(rows []EmergencyFund) []domain.Fund {
	out := make([]domain.Fund, 0, len(rows))
	for _, f := range rows {
		out = append(out, f.toDomain())
	}
	return out
}
