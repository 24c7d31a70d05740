package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/moneyflow/internal/api/middleware"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/dvloznov/moneyflow/internal/store"
	"github.com/rs/zerolog"
)

type eventResponse struct {
	ID         string                 `json:"id"`
	TargetKind domain.TargetKind      `json:"target_kind"`
	TargetID   string                 `json:"target_id"`
	Key        string                 `json:"event_key"`
	EventDate  string                 `json:"event_date"`
	Channel    string                 `json:"channel"`
	Status     domain.EventStatus     `json:"status"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NotificationsHandler exposes the notification log.
type NotificationsHandler struct {
	events store.Events
	log    zerolog.Logger
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(events store.Events, log zerolog.Logger) *NotificationsHandler {
	return &NotificationsHandler{events: events, log: log}
}

// ListNotifications handles GET /api/notifications with an optional
// target_id filter.
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.events.ListEvents(ctx, middleware.UserID(ctx), r.URL.Query().Get("target_id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list notifications")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:         e.ID,
			TargetKind: e.Ref.TargetKind,
			TargetID:   e.Ref.TargetID,
			Key:        e.Ref.Key,
			EventDate:  e.EventDate.String(),
			Channel:    e.Channel,
			Status:     e.Status,
			Meta:       e.Meta,
			CreatedAt:  e.CreatedAt,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": out,
		"count":         len(out),
	})
}
