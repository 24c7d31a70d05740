package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository is the notification log in Postgres.
type EventRepository struct {
	db          *gorm.DB
	retryFailed bool
}

// Claim inserts a pending row for ref. The insert is a no-op when the
// identity index already holds ref, so concurrent claimers cannot both win.
// With retryFailed a failed row is taken over instead.
func (r *EventRepository) Claim(ctx context.Context, ref domain.EventRef, day civil.Date) (bool, error) {
	row := NotificationEvent{
		UserID:     ref.UserID,
		TargetKind: string(ref.TargetKind),
		TargetID:   ref.TargetID,
		EventKey:   ref.Key,
		EventDate:  dateColumn(day),
		Channel:    domain.ChannelEmail,
		Status:     string(domain.EventPending),
		Meta:       datatypes.JSONMap{},
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("Claim: inserting event: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	if !r.retryFailed {
		return false, nil
	}

	res = r.identity(ctx, ref).
		Where("status = ?", string(domain.EventFailed)).
		Updates(map[string]interface{}{
			"status":     string(domain.EventPending),
			"event_date": dateColumn(day),
		})
	if res.Error != nil {
		return false, fmt.Errorf("Claim: reclaiming failed event: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *EventRepository) Finish(ctx context.Context, ref domain.EventRef, status domain.EventStatus, meta map[string]interface{}) error {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	res := r.identity(ctx, ref).Updates(map[string]interface{}{
		"status": string(status),
		"meta":   datatypes.JSONMap(meta),
	})
	if res.Error != nil {
		return fmt.Errorf("Finish: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("Finish: %w", ErrNotFound)
	}
	return nil
}

func (r *EventRepository) ListEvents(ctx context.Context, userID, targetID string) ([]domain.NotificationEvent, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if targetID != "" {
		q = q.Where("target_id = ?", targetID)
	}
	var rows []NotificationEvent
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	out := make([]domain.NotificationEvent, 0, len(rows))
	for _, e := range rows {
		out = append(out, e.toDomain())
	}
	return out, nil
}

func (r *EventRepository) identity(ctx context.Context, ref domain.EventRef) *gorm.DB {
	return r.db.WithContext(ctx).Model(&NotificationEvent{}).
		Where("user_id = ? AND target_kind = ? AND target_id = ? AND event_key = ?",
			ref.UserID, string(ref.TargetKind), ref.TargetID, ref.Key)
}
