// Package notify sends savings goal and emergency fund emails at most once
// per event and records every attempt in an event log.
package notify

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/moneyflow/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultSendTimeout bounds a single mail delivery.
const DefaultSendTimeout = 20 * time.Second

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	// HTML is an optional alternative part.
	HTML string
}

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// EventLog is the append-only notification log.
//
// Claim atomically reserves ref and reports whether the caller won it. A
// ref that is already present (sent, failed or in flight) is not claimed
// again. Finish records the outcome of a claimed ref.
type EventLog interface {
	Claim(ctx context.Context, ref domain.EventRef, day civil.Date) (bool, error)
	Finish(ctx context.Context, ref domain.EventRef, status domain.EventStatus, meta map[string]interface{}) error
}

// ContributionSource lists goal contributions dated within [from, to].
type ContributionSource interface {
	ContributionsBetween(ctx context.Context, goalID string, from, to civil.Date) ([]domain.Contribution, error)
}

// Outcome is what happened to one notification.
type Outcome int

const (
	// Skipped covers a missing email address and an already logged event.
	Skipped Outcome = iota
	Sent
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Sent:
		return "sent"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// Notifier composes and delivers notifications.
type Notifier struct {
	events        EventLog
	mailer        Mailer
	contributions ContributionSource
	sendTimeout   time.Duration
	log           zerolog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithSendTimeout overrides DefaultSendTimeout.
func WithSendTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.sendTimeout = d
		}
	}
}

// WithContributions sets the source for the contribution summaries in goal
// emails. Without it the summaries are empty.
func WithContributions(src ContributionSource) Option {
	return func(n *Notifier) { n.contributions = src }
}

// New creates a Notifier.
func New(events EventLog, mailer Mailer, log zerolog.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		events:      events,
		mailer:      mailer,
		sendTimeout: DefaultSendTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// envelope is one notification waiting to be sent.
type envelope struct {
	owner  domain.Owner
	kind   domain.TargetKind
	target string
	key    string
	day    civil.Date
	// compose renders the message and success metadata. It only runs once
	// the event has been claimed.
	compose func(ctx context.Context) (Message, map[string]interface{}, error)
}

// deliver claims the event, sends the message and records the outcome.
// Errors are logged, never returned.
func (n *Notifier) deliver(ctx context.Context, env envelope) Outcome {
	log := n.log.With().
		Str("user_id", env.owner.UserID).
		Str("target_kind", string(env.kind)).
		Str("target_id", env.target).
		Str("event_key", env.key).
		Logger()

	if env.owner.Email == "" {
		log.Debug().Msg("owner has no email, skipping notification")
		return Skipped
	}

	ref := domain.EventRef{
		UserID:     env.owner.UserID,
		TargetKind: env.kind,
		TargetID:   env.target,
		Key:        env.key,
	}
	claimed, err := n.events.Claim(ctx, ref, env.day)
	if err != nil {
		log.Error().Err(err).Msg("failed to claim notification event")
		return Failed
	}
	if !claimed {
		log.Debug().Msg("notification already logged, skipping")
		return Skipped
	}

	msg, meta, err := env.compose(ctx)
	if err == nil {
		msg.To = env.owner.Email
		err = n.send(ctx, msg)
	}
	if err != nil {
		log.Error().Err(err).Msg("notification send failed")
		n.finish(ctx, log, ref, domain.EventFailed, withError(meta, err))
		return Failed
	}

	n.finish(ctx, log, ref, domain.EventSent, meta)
	log.Info().Msg("notification sent")
	return Sent
}

func (n *Notifier) send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending %q: %w", msg.Subject, err)
	}
	return nil
}

func (n *Notifier) finish(ctx context.Context, log zerolog.Logger, ref domain.EventRef, status domain.EventStatus, meta map[string]interface{}) {
	// The outcome must be written even if the caller's context is gone.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := n.events.Finish(ctx, ref, status, meta); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("failed to record notification outcome")
	}
}

func withError(meta map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(meta)+1)
	if t, ok := meta["type"]; ok {
		out["type"] = t
	}
	out["error"] = err.Error()
	return out
}
