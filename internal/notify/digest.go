package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DigestScheduler fires a daily summary of accumulated terminal events
// to the enabled channels. Its next-run computation is adapted
// verbatim from the teacher's scheduler.Dispatcher.computeNext (same
// cron.ParseStandard + skip-missed-runs loop), generalized from a
// per-job schedule to a single fixed digest cadence.
type DigestScheduler struct {
	logger  *slog.Logger
	expr    string
	fire    func(ctx context.Context, events []Event)

	mu     sync.Mutex
	events []Event
}

func NewDigestScheduler(logger *slog.Logger, cronExpr string, fire func(ctx context.Context, events []Event)) *DigestScheduler {
	return &DigestScheduler{logger: logger.With("component", "notify.digest"), expr: cronExpr, fire: fire}
}

// Accumulate queues an event for the next digest firing instead of
// sending it immediately.
func (d *DigestScheduler) Accumulate(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

// Run blocks, firing the digest each time computeNext elapses, until
// ctx is cancelled.
func (d *DigestScheduler) Run(ctx context.Context) {
	sched, err := cron.ParseStandard(d.expr)
	if err != nil {
		d.logger.Error("invalid digest cron expression", "expr", d.expr, "error", err)
		return
	}

	next := d.computeNext(sched, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
			d.flush(ctx)
			next = d.computeNext(sched, next)
		}
	}
}

func (d *DigestScheduler) computeNext(sched cron.Schedule, from time.Time) time.Time {
	next := sched.Next(from)
	now := time.Now()
	for next.Before(now) {
		next = sched.Next(next)
	}
	return next
}

func (d *DigestScheduler) flush(ctx context.Context) {
	d.mu.Lock()
	batch := d.events
	d.events = nil
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	d.fire(ctx, batch)
}
