package clock_test

import (
	"testing"
	"time"

	"github.com/averyhale/ytprem-scheduler/internal/clock"
)

func newTestClock(t *testing.T) *clock.Clock {
	t.Helper()
	c, err := clock.New("Asia/Seoul")
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	return c
}

func TestParseDate_BothShapes(t *testing.T) {
	c := newTestClock(t)

	cases := []string{"2025. 12. 25", "2025-12-25"}
	for _, s := range cases {
		got, ok := c.ParseDate(s)
		if !ok {
			t.Fatalf("ParseDate(%q): expected ok", s)
		}
		if got.Year() != 2025 || got.Month() != time.December || got.Day() != 25 {
			t.Fatalf("ParseDate(%q) = %v, want 2025-12-25", s, got)
		}
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	c := newTestClock(t)

	for _, s := range []string{"", "not a date", "2025/12/25", "2025-13-01"} {
		if _, ok := c.ParseDate(s); ok {
			t.Fatalf("ParseDate(%q): expected not ok", s)
		}
	}
}

func TestCombine(t *testing.T) {
	c := newTestClock(t)

	got, ok := c.Combine("2025-12-25", "7:00")
	if !ok {
		t.Fatal("Combine: expected ok")
	}
	want := time.Date(2025, time.December, 25, 7, 0, 0, 0, c.Zone)
	if !got.Equal(want) {
		t.Fatalf("Combine = %v, want %v", got, want)
	}
}

func TestFormatStamps_RoundTripShape(t *testing.T) {
	c := newTestClock(t)
	instant := time.Date(2025, time.December, 25, 7, 45, 0, 0, c.Zone)

	if got, want := c.FormatShortStamp(instant), "12/25 07:45"; got != want {
		t.Fatalf("FormatShortStamp = %q, want %q", got, want)
	}
	if got, want := c.FormatLongStamp(instant), "2025-12-25 07:45:00"; got != want {
		t.Fatalf("FormatLongStamp = %q, want %q", got, want)
	}

	reparsed, ok := c.ParseLongStamp(c.FormatLongStamp(instant))
	if !ok || !reparsed.Equal(instant) {
		t.Fatalf("long stamp did not round-trip: got %v, ok=%v", reparsed, ok)
	}
}

func TestParseLongStamp_Empty(t *testing.T) {
	c := newTestClock(t)
	if _, ok := c.ParseLongStamp(""); ok {
		t.Fatal("ParseLongStamp(\"\"): expected not ok")
	}
}
