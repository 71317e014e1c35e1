package rowlock

import (
	"testing"
	"time"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
)

func testClock(t *testing.T) *clock.Clock {
	t.Helper()
	c, err := clock.New("Asia/Seoul")
	if err != nil {
		t.Fatalf("clock.New: %v", err)
	}
	return c
}

func TestParse_Empty(t *testing.T) {
	c := testClock(t)
	if _, ok := Parse("", c); ok {
		t.Fatal("expected ok=false for empty lock value")
	}
}

func TestParse_Malformed(t *testing.T) {
	c := testClock(t)
	for _, raw := range []string{"no-pipe-here", "|2026-01-01 00:00:00", "worker1|not-a-date"} {
		if _, ok := Parse(raw, c); ok {
			t.Errorf("Parse(%q) ok = true, want false", raw)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	c := testClock(t)
	want := LockValue{WorkerID: "host-123", Expiry: time.Date(2026, 7, 29, 10, 0, 0, 0, c.Now().Location())}
	raw := want.Format(c)
	got, ok := Parse(raw, c)
	if !ok {
		t.Fatalf("Parse(%q) ok=false", raw)
	}
	if got.WorkerID != want.WorkerID || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("Parse roundtrip = %+v, want %+v", got, want)
	}
}

func TestExpired_BoundaryIsExpired(t *testing.T) {
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	v := LockValue{WorkerID: "w", Expiry: now}
	if !v.Expired(now) {
		t.Fatal("lock whose expiry equals now must be considered expired")
	}
	if v.Expired(now.Add(-time.Second)) {
		t.Fatal("lock with future expiry must not be expired")
	}
}

func TestWorkerID_SlotSuffix(t *testing.T) {
	base := WorkerID(0)
	pooled := WorkerID(1)
	if base == pooled {
		t.Fatal("pooled worker id must differ from the base id")
	}
	if len(pooled) <= len(base) {
		t.Fatal("pooled worker id must carry a suffix")
	}
}
