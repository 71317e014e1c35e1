package workflow

import (
	"testing"
	"time"
)

func TestParseBillingDate_Shapes(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-12-25", time.Date(2025, 12, 25, 0, 0, 0, 0, loc)},
		{"December 25, 2025", time.Date(2025, 12, 25, 0, 0, 0, 0, loc)},
		{"Dec 25, 2025", time.Date(2025, 12, 25, 0, 0, 0, 0, loc)},
		{"Sept 25, 2025", time.Date(2025, 9, 25, 0, 0, 0, 0, loc)},
		{"2025년 12월 25일", time.Date(2025, 12, 25, 0, 0, 0, 0, loc)},
		{"25 de diciembre de 2025", time.Date(2025, 12, 25, 0, 0, 0, 0, loc)},
		{"25 de dezembro de 2025", time.Date(2025, 12, 25, 0, 0, 0, 0, loc)},
		{"25 Aralık 2025", time.Date(2025, 12, 25, 0, 0, 0, 0, loc)},
	}
	for _, c := range cases {
		got, ok := ParseBillingDate(c.in, loc, 2025)
		if !ok {
			t.Errorf("ParseBillingDate(%q) ok=false", c.in)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseBillingDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseBillingDate_KoreanBareYearUsesRef(t *testing.T) {
	got, ok := ParseBillingDate("12월 25일", time.UTC, 2026)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if got.Year() != 2026 {
		t.Errorf("year = %d, want 2026", got.Year())
	}
}

func TestParseBillingDate_NumericDisambiguation(t *testing.T) {
	// 25 > 12 -> must be the day -> D/M/Y.
	got, ok := ParseBillingDate("25/12/2025", time.UTC, 2025)
	if !ok || got.Month() != 12 || got.Day() != 25 {
		t.Fatalf("ParseBillingDate(25/12/2025) = %v, %v", got, ok)
	}

	// 12 <= 12, 25 > 12 -> M/D/Y: month=12, day=25.
	got2, ok := ParseBillingDate("12/25/2025", time.UTC, 2025)
	if !ok || got2.Month() != 12 || got2.Day() != 25 {
		t.Fatalf("ParseBillingDate(12/25/2025) = %v, %v", got2, ok)
	}
}

func TestParseBillingDate_RejectsOverflow(t *testing.T) {
	if _, ok := ParseBillingDate("2025-02-30", time.UTC, 2025); ok {
		t.Fatal("expected Feb 30 to be rejected, not silently normalized")
	}
}

func TestParseBillingDate_Unparseable(t *testing.T) {
	if _, ok := ParseBillingDate("not a date", time.UTC, 2025); ok {
		t.Fatal("expected ok=false for garbage input")
	}
	if _, ok := ParseBillingDate("", time.UTC, 2025); ok {
		t.Fatal("expected ok=false for empty input")
	}
}
