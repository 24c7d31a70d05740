package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// TargetKind names the entity a notification is about.
type TargetKind string

const (
	TargetGoal TargetKind = "goal"
	TargetFund TargetKind = "fund"
)

// EventStatus is the outcome recorded for a notification attempt.
type EventStatus string

const (
	// EventPending marks a claimed event whose send has not finished yet.
	EventPending EventStatus = "pending"
	EventSent    EventStatus = "sent"
	EventFailed  EventStatus = "failed"
)

// ChannelEmail is the only delivery channel.
const ChannelEmail = "email"

// EventRef identifies one notification instance. A ref is delivered at most
// once: the tuple is unique in the event log.
type EventRef struct {
	UserID     string
	TargetKind TargetKind
	TargetID   string
	Key        string
}

// NotificationEvent is one row of the notification log.
type NotificationEvent struct {
	ID        string
	Ref       EventRef
	EventDate civil.Date
	Channel   string
	Status    EventStatus
	Meta      map[string]interface{}
	CreatedAt time.Time
}
