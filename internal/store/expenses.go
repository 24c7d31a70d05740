package store

import (
	"context"
	"fmt"

	"github.com/dvloznov/moneyflow/internal/domain"
	"gorm.io/gorm"
)

const expenseBatchSize = 100

// ExpenseRepository stores expenses in Postgres.
type ExpenseRepository struct {
	db *gorm.DB
}

func (r *ExpenseRepository) InsertExpenses(ctx context.Context, expenses []domain.Expense) (int, error) {
	if len(expenses) == 0 {
		return 0, nil
	}
	rows := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, Expense{
			ID:          e.ID,
			UserID:      e.UserID,
			Description: e.Description,
			Category:    e.Category,
			Amount:      e.Amount,
			ExpenseDate: dateColumn(e.Date),
			Direction:   string(e.Direction),
			Source:      string(e.Source),
			RawText:     e.RawText,
		})
	}
	res := r.db.WithContext(ctx).CreateInBatches(rows, expenseBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("InsertExpenses: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *ExpenseRepository) ListExpenses(ctx context.Context, userID string, limit int) ([]domain.Expense, error) {
	var rows []Expense
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("expense_date DESC, created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ListExpenses: %w", err)
	}
	out := make([]domain.Expense, 0, len(rows))
	for _, e := range rows {
		out = append(out, e.toDomain())
	}
	return out, nil
}
