package worker

import (
	"testing"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
	"github.com/averyhale/ytprem-scheduler/internal/sheetsgw"
)

func testClock(t *testing.T) *clock.Clock {
	t.Helper()
	c, err := clock.New("Asia/Seoul")
	if err != nil {
		t.Fatalf("clock.New: %v", err)
	}
	return c
}

func TestParseRowScheduledInstant(t *testing.T) {
	r := NewSheetRows(nil, testClock(t), "Worker", "Mapping")

	row := r.parseRow(sheetsgw.Record{
		"email":              "user@example.com",
		"status":             "active",
		"nextBillingDate":    "2025-12-25",
		"scheduledTimeOfDay": "07:00",
		"retryCount":         "2",
	})

	if !row.ScheduledInstantSet {
		t.Fatal("expected ScheduledInstantSet=true")
	}
	if row.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", row.RetryCount)
	}
	if got := row.ScheduledInstant.Format("2006-01-02 15:04"); got != "2025-12-25 07:00" {
		t.Errorf("ScheduledInstant = %s, want 2025-12-25 07:00", got)
	}
}

func TestParseRowUnparseableDateIsIneligible(t *testing.T) {
	r := NewSheetRows(nil, testClock(t), "Worker", "Mapping")

	row := r.parseRow(sheetsgw.Record{
		"email":              "user@example.com",
		"nextBillingDate":    "not-a-date",
		"scheduledTimeOfDay": "07:00",
	})

	if row.ScheduledInstantSet {
		t.Fatal("expected ScheduledInstantSet=false for an unparseable date")
	}
}
