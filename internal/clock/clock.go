// Package clock parses the two spreadsheet cell shapes used throughout the
// core — a calendar date and an hours:minutes time of day — into absolute
// instants in a single fixed zone, and formats instants back for the
// result writer and the lock manager. No comparison anywhere else in the
// system does its own zone math; everything routes through here.
package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	ShortStampLayout = "01/02 15:04"
	LongStampLayout  = "2006-01-02 15:04:05"
)

var (
	dotDateRe  = regexp.MustCompile(`^\s*(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})\.?\s*$`)
	dashDateRe = regexp.MustCompile(`^\s*(\d{4})-(\d{1,2})-(\d{1,2})\s*$`)
	timeOfDayRe = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)
)

// Clock is the single source of "now" for the core, always in Zone.
type Clock struct {
	Zone *time.Location
}

// New returns a Clock in the named IANA zone. An empty name defaults to
// Asia/Seoul, matching the source system.
func New(zoneName string) (*Clock, error) {
	if zoneName == "" {
		zoneName = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", zoneName, err)
	}
	return &Clock{Zone: loc}, nil
}

// Now returns the current instant in the clock's zone.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.Zone)
}

// ParseDate parses "YYYY. MM. DD" or "YYYY-MM-DD" into a date (midnight) in
// the clock's zone. ok is false for any unparseable input — never a silent
// zero value.
func (c *Clock) ParseDate(s string) (t time.Time, ok bool) {
	if m := dotDateRe.FindStringSubmatch(s); m != nil {
		return c.buildDate(m)
	}
	if m := dashDateRe.FindStringSubmatch(s); m != nil {
		return c.buildDate(m)
	}
	return time.Time{}, false
}

func (c *Clock) buildDate(m []string) (time.Time, bool) {
	year, err1 := strconv.Atoi(m[1])
	month, err2 := strconv.Atoi(m[2])
	day, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, c.Zone), true
}

// ParseTimeOfDay parses "H:MM" (24-hour) into an (hour, minute) pair.
func (c *Clock) ParseTimeOfDay(s string) (hour, minute int, ok bool) {
	m := timeOfDayRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(m[1])
	mm, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || h > 23 || mm > 59 {
		return 0, 0, false
	}
	return h, mm, true
}

// Combine merges a calendar date with an hours:minutes time of day into a
// single scheduled instant in the clock's zone.
func (c *Clock) Combine(dateStr, timeStr string) (time.Time, bool) {
	date, ok := c.ParseDate(dateStr)
	if !ok {
		return time.Time{}, false
	}
	hour, minute, ok := c.ParseTimeOfDay(timeStr)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, c.Zone), true
}

// ParseLongStamp parses a "YYYY-MM-DD HH:MM:SS" instant (lock expiries,
// payment-retry timestamps) in the clock's zone.
func (c *Clock) ParseLongStamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(LongStampLayout, s, c.Zone)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatLongStamp formats t for lock expiries and payment-retry cells.
func (c *Clock) FormatLongStamp(t time.Time) string {
	return t.In(c.Zone).Format(LongStampLayout)
}

// FormatShortStamp formats t as a human-readable result summary prefix.
func (c *Clock) FormatShortStamp(t time.Time) string {
	return t.In(c.Zone).Format(ShortStampLayout)
}

// FormatDate renders a date the way the sheet stores it, canonicalized to
// the dash form.
func (c *Clock) FormatDate(t time.Time) string {
	return t.In(c.Zone).Format("2006-01-02")
}
