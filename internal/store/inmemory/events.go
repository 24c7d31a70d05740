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
)

// Events is an in-memory notification log. The mutex makes Claim atomic.
type Events struct {
	mu          sync.Mutex
	retryFailed bool
	events      map[domain.EventRef]*domain.NotificationEvent
}

// NewEvents creates an empty log.
func NewEvents(retryFailed bool) *Events {
	return &Events{
		retryFailed: retryFailed,
		events:      make(map[domain.EventRef]*domain.NotificationEvent),
	}
}

func (e *Events) Claim(ctx context.Context, ref domain.EventRef, day civil.Date) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev, ok := e.events[ref]; ok {
		if e.retryFailed && ev.Status == domain.EventFailed {
			ev.Status = domain.EventPending
			ev.EventDate = day
			return true, nil
		}
		return false, nil
	}
	e.events[ref] = &domain.NotificationEvent{
		ID:        uuid.NewString(),
		Ref:       ref,
		EventDate: day,
		Channel:   domain.ChannelEmail,
		Status:    domain.EventPending,
		Meta:      map[string]interface{}{},
		CreatedAt: time.Now(),
	}
	return true, nil
}

func (e *Events) Finish(ctx context.Context, ref domain.EventRef, status domain.EventStatus, meta map[string]interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ev, ok := e.events[ref]
	if !ok {
		return fmt.Errorf("event %s: %w", ref.Key, store.ErrNotFound)
	}
	ev.Status = status
	ev.Meta = copyMeta(meta)
	return nil
}

func (e *Events) ListEvents(ctx context.Context, userID, targetID string) ([]domain.NotificationEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := []domain.NotificationEvent{}
	for _, ev := range e.events {
		if ev.Ref.UserID != userID || (targetID != "" && ev.Ref.TargetID != targetID) {
			continue
		}
		evCopy := *ev
		evCopy.Meta = copyMeta(ev.Meta)
		result = append(result, evCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func copyMeta(meta map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

var _ store.Events = (*Events)(nil)
