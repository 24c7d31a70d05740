package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalRepository stores savings goals in Postgres.
type GoalRepository struct {
	db *gorm.DB
}

func (r *GoalRepository) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	var rows []SavingsGoal
	if err := r.db.WithContext(ctx).Preload("User").Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ListGoals: %w", err)
	}
	return goalsToDomain(rows), nil
}

func (r *GoalRepository) ListUserGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	var rows []SavingsGoal
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("target_date NULLS LAST, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ListUserGoals: %w", err)
	}
	return goalsToDomain(rows), nil
}

func (r *GoalRepository) GetGoal(ctx context.Context, userID, goalID string) (domain.Goal, error) {
	var row SavingsGoal
	err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&row).Error
	if err != nil {
		return domain.Goal{}, fmt.Errorf("GetGoal: %w", notFound(err))
	}
	return row.toDomain(), nil
}

// CreateGoal inserts goal. A positive starting balance is also recorded as
// a contribution made on day.
func (r *GoalRepository) CreateGoal(ctx context.Context, goal domain.Goal, day civil.Date) (domain.Goal, error) {
	row := SavingsGoal{
		ID:           goal.ID,
		UserID:       goal.Owner.UserID,
		Name:         goal.Name,
		TargetAmount: goal.TargetAmount,
		SavedAmount:  goal.SavedAmount,
		TargetDate:   optionalDateColumn(goal.TargetDate),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(&row).Error; err != nil {
			return err
		}
		if row.SavedAmount.IsPositive() {
			c := SavingsContribution{
				GoalID:           row.ID,
				UserID:           row.UserID,
				Amount:           row.SavedAmount,
				ContributionDate: dateColumn(day),
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		}
		return tx.Preload("User").First(&row, "id = ?", row.ID).Error
	})
	if err != nil {
		return domain.Goal{}, fmt.Errorf("CreateGoal: %w", err)
	}
	return row.toDomain(), nil
}

func (r *GoalRepository) AddContribution(ctx context.Context, userID, goalID string, amount decimal.Decimal, day civil.Date) (domain.Goal, error) {
	var row SavingsGoal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", goalID, userID).
			First(&row).Error
		if err != nil {
			return notFound(err)
		}
		if exceedsTarget(row.SavedAmount, amount, row.TargetAmount) {
			return ErrExceedsTarget
		}
		row.SavedAmount = row.SavedAmount.Add(amount)
		if err := tx.Model(&row).Update("saved_amount", row.SavedAmount).Error; err != nil {
			return err
		}
		c := SavingsContribution{
			GoalID:           row.ID,
			UserID:           row.UserID,
			Amount:           amount,
			ContributionDate: dateColumn(day),
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return tx.First(&row.User, "id = ?", row.UserID).Error
	})
	if err != nil {
		return domain.Goal{}, fmt.Errorf("AddContribution: %w", err)
	}
	return row.toDomain(), nil
}

func (r *GoalRepository) ContributionsBetween(ctx context.Context, goalID string, from, to civil.Date) ([]domain.Contribution, error) {
	var rows []SavingsContribution
	err := r.db.WithContext(ctx).
		Where("goal_id = ? AND contribution_date BETWEEN ? AND ?", goalID, dateColumn(from), dateColumn(to)).
		Order("contribution_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ContributionsBetween: %w", err)
	}
	out := make([]domain.Contribution, 0, len(rows))
	for _, c := range rows {
		out = append(out, domain.Contribution{
			ID:       c.ID,
			TargetID: c.GoalID,
			Amount:   c.Amount,
			Date:     civil.DateOf(c.ContributionDate),
		})
	}
	return out, nil
}

func (r *GoalRepository) HasContributionBetween(ctx context.Context, goalID string, from, to civil.Date) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&SavingsContribution{}).
		Where("goal_id = ? AND contribution_date BETWEEN ? AND ?", goalID, dateColumn(from), dateColumn(to)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("HasContributionBetween: %w", err)
	}
	return n > 0, nil
}

func goalsToDomain(rows []SavingsGoal) []domain.Goal {
	out := make([]domain.Goal, 0, len(rows))
	for _, g := range rows {
		out = append(out, g.toDomain())
	}
	return out
}
