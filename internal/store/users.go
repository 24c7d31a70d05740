package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/moneyflow/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository stores profiles in Postgres.
type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) UpsertUser(ctx context.Context, owner domain.Owner) (domain.Owner, error) {
	row := User{ID: owner.UserID, Username: owner.Username, Email: owner.Email}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return domain.Owner{}, fmt.Errorf("UpsertUser: %w", err)
	}
	return ownerOf(row), nil
}

func (r *UserRepository) GetUser(ctx context.Context, userID string) (domain.Owner, error) {
	var row User
	if err := r.db.WithContext(ctx).First(&row, "id = ?", userID).Error; err != nil {
		return domain.Owner{}, fmt.Errorf("GetUser: %w", notFound(err))
	}
	return ownerOf(row), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
