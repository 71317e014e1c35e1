// Package notify is the ambient out-of-band notification stack (spec
// §4.9): a Notifier interface with concrete senders selected by the
// Config Store's notify* toggles, fanned out fire-and-forget so
// delivery failures never block a commit.
package notify

import (
	"context"
	"log/slog"
)

// Event is one notifiable occurrence: a terminal failure, a payment
// delay, an infinite-loop detection, a retry-cap exceeded, or a
// payment-method issue (spec §4.9's enabled notification categories).
type Event struct {
	Category string // "permanent_failure" | "payment_delay" | "infinite_loop" | "retry_cap_exceeded" | "payment_method_issue"
	Email    string
	Summary  string
}

// Notifier delivers one Event over one named channel. Implementations
// must not block the caller for long and must never propagate a
// delivery failure as fatal — Dispatch logs and swallows errors from
// every sender.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Channel() string // "email" | "webhook" | "console" | "pagerduty"
}

// Dispatcher fans an Event out to every channel enabled in the current
// Config Store snapshot, independently and fire-and-forget (spec
// §4.9's channel-by-channel toggles).
type Dispatcher struct {
	logger  *slog.Logger
	senders []Notifier
}

func NewDispatcher(logger *slog.Logger, senders ...Notifier) *Dispatcher {
	return &Dispatcher{logger: logger.With("component", "notify"), senders: senders}
}

// Dispatch sends ev to every sender whose channel is present in
// enabled. A sender's error is logged, never returned — notification
// delivery must never block or fail the commit it rides along with.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event, enabled map[string]bool) {
	for _, s := range d.senders {
		if !enabled[s.Channel()] {
			continue
		}
		if err := s.Notify(ctx, ev); err != nil {
			d.logger.Warn("notification delivery failed", "channel", s.Channel(), "category", ev.Category, "error", err)
		}
	}
}

// EnabledChannels translates a Config Store snapshot's notify toggles
// into the channel set Dispatch expects.
func EnabledChannels(email, webhook, console, pagerduty bool) map[string]bool {
	return map[string]bool{
		"email":     email,
		"webhook":   webhook,
		"console":   console,
		"pagerduty": pagerduty,
	}
}
