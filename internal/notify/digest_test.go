package notify

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestDigestScheduler_ComputeNextSkipsPast(t *testing.T) {
	d := NewDigestScheduler(slog.Default(), "0 9 * * *", nil)
	sched, err := cron.ParseStandard("0 9 * * *")
	if err != nil {
		t.Fatalf("ParseStandard: %v", err)
	}

	from := time.Now().Add(-48 * time.Hour)
	next := d.computeNext(sched, from)
	if !next.After(time.Now()) {
		t.Fatalf("computeNext(%v) = %v, want a time after now", from, next)
	}
}

func TestDigestScheduler_AccumulateAndFlush(t *testing.T) {
	var fired []Event
	d := NewDigestScheduler(slog.Default(), "0 9 * * *", func(_ context.Context, events []Event) { fired = events })
	d.Accumulate(Event{Category: "payment_delay", Summary: "test"})
	if len(d.events) != 1 {
		t.Fatalf("expected 1 accumulated event, got %d", len(d.events))
	}

	d.flush(context.Background())
	if len(fired) != 1 {
		t.Fatalf("expected flush to fire 1 event, got %d", len(fired))
	}
	if len(d.events) != 0 {
		t.Fatalf("expected no accumulated events after flush, got %d", len(d.events))
	}
}
